package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"bachatlist/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var ErrMissingToken = errors.New("telegram bot token is not configured")

// Telegram sends messages through the Bot API. Bots are created once per token.
type Telegram struct {
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
	log  *zap.Logger
}

// NewTelegram creates a Telegram sender. An empty endpoint selects the public API.
func NewTelegram(endpoint string, client *http.Client, log *zap.Logger) *Telegram {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{
		endpoint: endpoint,
		client:   client,
		bots:     make(map[string]*tgbotapi.BotAPI),
		log:      log.With(zap.String("component", "telegram")),
	}
}

// bot returns the cached client for token, authorising it on first use.
func (t *Telegram) bot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if bot, ok := t.bots[token]; ok {
		return bot, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, t.endpoint, t.client)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("telegram token is invalid or revoked, ask @BotFather for a new one")
		}
		return nil, fmt.Errorf("telegram connection failed: %w", err)
	}

	bot.Debug = false
	t.log.Info("bot authorised", zap.String("username", bot.Self.UserName))
	t.bots[token] = bot
	return bot, nil
}

// Send posts msg to the chat named by ch.Target, a numeric id or an @channel.
func (t *Telegram) Send(_ context.Context, ch models.Channel, msg Message) error {
	const op = "notify.Telegram.Send"

	bot, err := t.bot(ch.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := messageConfig(ch.Target, msg.Text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	cfg.ParseMode = msg.ParseMode

	if _, err := bot.Send(cfg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func messageConfig(target, text string) (tgbotapi.MessageConfig, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return tgbotapi.MessageConfig{}, errors.New("telegram chat id is not configured")
	}
	if chatID, err := strconv.ParseInt(target, 10, 64); err == nil {
		return tgbotapi.NewMessage(chatID, text), nil
	}
	return tgbotapi.NewMessageToChannel(target, text), nil
}

// TestConnection calls getMe and returns the bot account.
func (t *Telegram) TestConnection(_ context.Context, token string) (*tgbotapi.User, error) {
	const op = "notify.Telegram.TestConnection"

	bot, err := t.bot(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	me, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &me, nil
}

// SetWebhook registers url as the bot's webhook.
func (t *Telegram) SetWebhook(_ context.Context, token, url string) error {
	const op = "notify.Telegram.SetWebhook"

	bot, err := t.bot(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
