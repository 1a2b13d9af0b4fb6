package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rahul/rasoi/internal/governance"
)

// DiscordGateway mirrors the Telegram gateway for Discord channels:
// text requests only, per-channel budgets via "/budget N".
type DiscordGateway struct {
	Session *discordgo.Session
	Runner  Runner
	Policy  governance.PolicyEngine

	mu      sync.Mutex
	budgets map[string]float64
}

func NewDiscordGateway(token string, runner Runner, policy governance.PolicyEngine) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	gw := &DiscordGateway{
		Session: session,
		Runner:  runner,
		Policy:  policy,
		budgets: make(map[string]float64),
	}
	session.AddHandler(gw.onMessage)
	return gw, nil
}

func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return err
	}
	log.Printf("Discord gateway connected as %s", dg.Session.State.User.Username)
	return nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	response := dg.handleMessage(context.Background(), m.ChannelID, m.Content)
	if response == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		log.Printf("discord send failed: %v", err)
	}
}

func (dg *DiscordGateway) handleMessage(ctx context.Context, channelID, content string) string {
	if strings.HasPrefix(content, "/budget") {
		fields := strings.Fields(content)
		if len(fields) != 2 {
			return "Usage: /budget 50"
		}
		budget, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || budget <= 0 {
			return "The budget must be a positive number, e.g. /budget 50"
		}
		dg.mu.Lock()
		dg.budgets[channelID] = budget
		dg.mu.Unlock()
		return fmt.Sprintf("Budget set to %.2f for this channel.", budget)
	}

	if strings.TrimSpace(content) == "" {
		return ""
	}

	dg.mu.Lock()
	budget, ok := dg.budgets[channelID]
	dg.mu.Unlock()
	if !ok {
		budget = DefaultBudget
	}

	verdict, err := dg.Policy.Evaluate(ctx, governance.Request{UserInput: content, Budget: budget, Source: "discord"})
	if err == nil && verdict.Effect == governance.EffectDeny {
		return verdict.Reason
	}

	state, err := dg.Runner.Run(ctx, content, budget)
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		return "I'm having trouble putting a shopping list together right now..."
	}
	return state.FinalMessage
}

func (dg *DiscordGateway) Send(channelID string, text string) error {
	_, err := dg.Session.ChannelMessageSend(channelID, text)
	return err
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
