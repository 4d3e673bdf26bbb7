package push

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramGateway delivers notifications as Telegram messages. Endpoint
// tokens are chat ids in decimal form; users register one by starting a chat
// with the planner's bot.
type TelegramGateway struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramGateway authenticates the bot once at startup.
func NewTelegramGateway(token string) (*TelegramGateway, error) {
	if token == "" {
		return nil, fmt.Errorf("Telegram bot token must be set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &TelegramGateway{bot: bot}, nil
}

// Name identifies the backend in logs
func (g *TelegramGateway) Name() string { return "telegram" }

// Send delivers the notification chat by chat. A malformed chat id or a chat
// that blocked the bot counts as a permanently invalid token.
func (g *TelegramGateway) Send(ctx context.Context, n Notification, tokens []string) ([]TokenResult, error) {
	results := make([]TokenResult, 0, len(tokens))

	for _, token := range tokens {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		chatID, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			results = append(results, TokenResult{
				Token:  token,
				Status: StatusInvalidToken,
				Err:    fmt.Errorf("malformed chat id: %w", err),
			})
			continue
		}

		msg := tgbotapi.NewMessage(chatID, n.Title+"\n"+n.Body)
		if _, err := g.bot.Send(msg); err != nil {
			status := StatusFailed
			if isDeadChat(err) {
				status = StatusInvalidToken
			}
			results = append(results, TokenResult{Token: token, Status: status, Err: err})
			continue
		}
		results = append(results, TokenResult{Token: token, Status: StatusDelivered})
	}

	return results, nil
}

// isDeadChat reports whether the API error means the chat can never be
// reached again.
func isDeadChat(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "blocked by the user") ||
		strings.Contains(msg, "chat not found") ||
		strings.Contains(msg, "user is deactivated")
}
