package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/rasoi/internal/cache"
	"github.com/rahul/rasoi/internal/gateway"
	"github.com/rahul/rasoi/internal/governance"
	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/rahul/rasoi/internal/pipeline"
	"github.com/rahul/rasoi/internal/store"
	"github.com/rahul/rasoi/internal/transcribe"
	"github.com/rahul/rasoi/pkg/config"
)

func main() {
	cfg := config.LoadConfig("config.json")

	// Catalog store
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if cfg.Store.Catalog != "" {
		catalog, err := store.LoadCatalog(cfg.Store.Catalog)
		if err != nil {
			log.Fatal(err)
		}
		if err := st.Seed(catalog); err != nil {
			log.Fatal(err)
		}
		log.Printf("Seeded catalog from %s", cfg.Store.Catalog)
	}

	// Memoization cache
	memo, err := cache.Open(cfg.Cache.Path, cfg.CacheTTL())
	if err != nil {
		log.Fatal(err)
	}
	defer memo.Close()

	// Reasoning service (first enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}
	reasoner, err := llm.New(pName, pCfg)
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.NewLogger()
	prompts := pipeline.NewPromptManager(cfg.App.Prompts)
	pipe := pipeline.New(reasoner, st, memo, prompts, logger)

	// Request policy: refuse obvious prompt-smuggling and absurd budgets.
	gov := governance.NewDefaultPolicyEngine()
	_ = gov.DenyInput(`(?i)ignore (all|previous) instructions`)
	gov.LimitBudget(1_000_000)

	// Whisper transcriber reuses the OpenAI key when one is configured.
	var transcriber transcribe.Transcriber
	if oa, ok := cfg.Providers["openai"]; ok && oa.APIKey != "" {
		transcriber = transcribe.NewWhisper(oa.APIKey)
	} else {
		log.Println("Warning: no openai api_key configured; voice transcription disabled")
		transcriber = unavailableTranscriber{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gateways []gateway.Messenger

	httpCfg, ok := cfg.GetGateway("http")
	if !ok {
		httpCfg.Addr = ":8080"
	}
	gateways = append(gateways, gateway.NewHTTPGateway(httpCfg.Addr, pipe, st, transcriber, gov))

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, pipe, transcriber, gov)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, tg)
	}

	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, pipe, gov)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, dc)
	}

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("gateway error: %v", err)
				stop()
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		if err := gw.Stop(); err != nil {
			log.Printf("gateway shutdown: %v", err)
		}
	}

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("Shutdown complete. Goodbye.")
}

type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	return "", errors.New("transcription is not configured")
}
