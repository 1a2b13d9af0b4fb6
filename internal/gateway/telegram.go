package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/rasoi/internal/governance"
	"github.com/rahul/rasoi/internal/transcribe"
)

// TelegramGateway runs shopping requests from Telegram chats. Text messages
// go straight into the pipeline; voice notes are transcribed first. Users
// set their budget with "/budget N"; without one the default sentinel is used.
type TelegramGateway struct {
	Bot         *tgbotapi.BotAPI
	Runner      Runner
	Transcriber transcribe.Transcriber
	Policy      governance.PolicyEngine

	mu      sync.Mutex
	budgets map[int64]float64
}

func NewTelegramGateway(token string, runner Runner, tr transcribe.Transcriber, policy governance.PolicyEngine) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:         bot,
		Runner:      runner,
		Transcriber: tr,
		Policy:      policy,
		budgets:     make(map[int64]float64),
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		response := tg.handleMessage(context.Background(), update.Message)
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) handleMessage(ctx context.Context, m *tgbotapi.Message) string {
	chatID := m.Chat.ID

	if strings.HasPrefix(m.Text, "/budget") {
		return tg.setBudget(chatID, m.Text)
	}

	input := m.Text
	if m.Voice != nil {
		text, err := tg.transcribeVoice(ctx, m.Voice.FileID)
		if err != nil {
			log.Printf("voice transcription failed: %v", err)
			return "I couldn't understand the voice message, please try again or type your request."
		}
		input = text
	}

	if strings.TrimSpace(input) == "" {
		return "Tell me what you want to prepare, e.g. \"Dinner for 4 people\". Set a budget with /budget 50."
	}

	budget := tg.budgetFor(chatID)

	verdict, err := tg.Policy.Evaluate(ctx, governance.Request{UserInput: input, Budget: budget, Source: "telegram"})
	if err == nil && verdict.Effect == governance.EffectDeny {
		return verdict.Reason
	}

	state, err := tg.Runner.Run(ctx, input, budget)
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		return "I'm having trouble putting a shopping list together right now..."
	}
	return state.FinalMessage
}

func (tg *TelegramGateway) setBudget(chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "Usage: /budget 50"
	}
	budget, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || budget <= 0 {
		return "The budget must be a positive number, e.g. /budget 50"
	}

	tg.mu.Lock()
	tg.budgets[chatID] = budget
	tg.mu.Unlock()

	return fmt.Sprintf("Budget set to %.2f for this chat.", budget)
}

func (tg *TelegramGateway) budgetFor(chatID int64) float64 {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	if b, ok := tg.budgets[chatID]; ok {
		return b
	}
	return DefaultBudget
}

func (tg *TelegramGateway) transcribeVoice(ctx context.Context, fileID string) (string, error) {
	url, err := tg.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download voice file: status %d", resp.StatusCode)
	}

	return tg.Transcriber.Transcribe(ctx, "voice.ogg", resp.Body)
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
