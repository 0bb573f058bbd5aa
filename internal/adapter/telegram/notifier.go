package telegram

import (
	"context"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const chunkSize = 2048

// Notifier posts agent console output to a single Telegram chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier connects to the Bot API at endpoint, a format string taking
// the token and method. An empty endpoint means the public API.
func NewNotifier(token, endpoint string, chatID int64) (*Notifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{})
	if err != nil {
		return nil, err
	}

	return &Notifier{
		api:    api,
		chatID: chatID,
	}, nil
}

// Notify sends text as plain messages of at most chunkSize runes each.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	for _, chunk := range splitText(text, chunkSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, chunk)); err != nil {
			return err
		}
	}
	return nil
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
