package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-lens/internal/lens"
	"market-lens/internal/snapshot"
)

// Notification carries the daily call and what changed versus yesterday.
type Notification struct {
	Date      string
	DailyCall string
	Posture   lens.Posture
	Playbook  lens.Playbook
	Leverage  lens.Leverage
	Delta     snapshot.Delta
}

// Notifier delivers day-over-day change notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls the sendMessage API with the rendered daily update.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Str("date", note.Date).
		Int("changes", len(note.Delta.Changes)).
		Msg("daily update sent (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Market Lens Daily]\n")
	builder.WriteString(fmt.Sprintf("Date: %s\n", note.Date))
	builder.WriteString(fmt.Sprintf("Call: %s\n", note.DailyCall))
	builder.WriteString(fmt.Sprintf("Posture: %s | Playbook: %s | Leverage: %s\n", note.Posture, note.Playbook, note.Leverage))
	builder.WriteString(fmt.Sprintf("Versus yesterday: %s\n", note.Delta.Summary))
	for _, change := range note.Delta.Changes {
		builder.WriteString(fmt.Sprintf("- %s: %s -> %s\n", change.Label, orNone(change.From), orNone(change.To)))
	}
	return builder.String()
}

func orNone(v string) string {
	if v == "" {
		return "n/a"
	}
	return v
}

var _ Notifier = (*TelegramNotifier)(nil)
