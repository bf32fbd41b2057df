package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telegram delivers notifications as bot messages to one chat. Permission
// stays undetermined until RequestPermission has authenticated the bot token.
type Telegram struct {
	token    string
	chatID   int64
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	bot  *tgbotapi.BotAPI
	perm Permission
}

// NewTelegram creates a Telegram notifier. Nothing is sent over the network
// until RequestPermission.
func NewTelegram(token string, chatID int64) *Telegram {
	return newTelegram(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegram(token string, chatID int64, endpoint string) *Telegram {
	return &Telegram{
		token:    token,
		chatID:   chatID,
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		perm: PermissionDefault,
	}
}

func (t *Telegram) Supported() bool {
	return t.token != "" && t.chatID != 0
}

func (t *Telegram) Permission() Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.perm
}

// RequestPermission validates the token with getMe. A rejected token is a
// denial; a transport failure leaves the state undetermined.
func (t *Telegram) RequestPermission(_ context.Context) (Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.perm != PermissionDefault {
		return t.perm, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			t.perm = PermissionDenied
			return t.perm, nil
		}
		return t.perm, fmt.Errorf("telegram getMe: %w", err)
	}
	t.bot = bot
	t.perm = PermissionGranted
	return t.perm, nil
}

func (t *Telegram) Show(_ context.Context, n Notification) error {
	t.mu.Lock()
	bot := t.bot
	t.mu.Unlock()
	if bot == nil {
		return fmt.Errorf("telegram bot not authorized")
	}

	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Body)))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
