package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"quiz-grading-service/internal/domain"

	"gopkg.in/telebot.v4"
)

const (
	DefaultAPIURL  = "https://api.telegram.org"
	DefaultTimeout = 10 * time.Second

	ReasonIncomplete = "notification settings are incomplete"
)

// SettingsSource yields the active Telegram configuration.
type SettingsSource interface {
	ActiveSetting(ctx context.Context) (domain.NotificationSetting, error)
}

// Dispatcher sends attempt summaries to the configured Telegram chat.
// Delivery is best-effort: one request, no retries, failures are only reported.
type Dispatcher struct {
	settings SettingsSource
	apiURL   string
	client   *http.Client
	locale   string
}

func NewDispatcher(settings SettingsSource, apiURL string, timeout time.Duration, locale string) *Dispatcher {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if locale == "" {
		locale = LocaleUzbek
	}
	return &Dispatcher{
		settings: settings,
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		client:   &http.Client{Timeout: timeout},
		locale:   locale,
	}
}

// chatRecipient addresses a chat by numeric id or @username.
type chatRecipient string

func (c chatRecipient) Recipient() string {
	return string(c)
}

// Send delivers the summary of attempt. It never returns an error: the outcome
// is reported in the Delivery.
func (d *Dispatcher) Send(ctx context.Context, attempt domain.Attempt) domain.Delivery {
	setting, err := d.settings.ActiveSetting(ctx)
	if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
		log.Printf("load notification settings: %v", err)
		return domain.Delivery{Reason: fmt.Sprintf("load notification settings: %v", err)}
	}
	if err != nil || !setting.Complete() {
		return domain.Delivery{Reason: ReasonIncomplete}
	}

	bot, err := telebot.NewBot(telebot.Settings{
		URL:     d.apiURL,
		Token:   setting.BotToken,
		Client:  d.client,
		Offline: true,
	})
	if err != nil {
		reason := redact(err.Error(), setting.BotToken)
		log.Printf("telegram bot init failed: %s", reason)
		return domain.Delivery{Reason: reason}
	}

	if _, err := bot.Send(chatRecipient(setting.AdminChatID), FormatSummary(attempt, d.locale)); err != nil {
		reason := redact(err.Error(), setting.BotToken)
		log.Printf("telegram notification for attempt %d failed: %s", attempt.ID, reason)
		return domain.Delivery{Reason: reason}
	}
	return domain.Delivery{Sent: true}
}

func redact(msg, token string) string {
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "<redacted>")
}
