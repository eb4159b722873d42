package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
)

// Transport delivers Telegram messages to the bot and sends replies back.
type Transport struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

func New(token string, pollTimeout int, debug bool, logger *zap.Logger) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = debug

	if pollTimeout <= 0 {
		pollTimeout = 60
	}

	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return &Transport{
		api:         api,
		pollTimeout: pollTimeout,
		logger:      logger,
	}, nil
}

// Updates long-polls Telegram until ctx is cancelled. Updates that carry no
// usable text are skipped.
func (t *Transport) Updates(ctx context.Context) <-chan models.InboundMessage {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout

	updates := t.api.GetUpdatesChan(u)
	out := make(chan models.InboundMessage)

	go func() {
		defer close(out)
		defer t.api.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := toInbound(update)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (t *Transport) Send(ctx context.Context, reply models.OutboundReply) error {
	msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = replyKeyboard(reply.Keyboard)
	}

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (t *Transport) Typing(ctx context.Context, chatID int64) error {
	if _, err := t.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		return fmt.Errorf("failed to send chat action: %w", err)
	}
	return nil
}

func toInbound(update tgbotapi.Update) (models.InboundMessage, bool) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return models.InboundMessage{}, false
	}

	text := message.Text
	if text == "" {
		text = message.Caption
	}
	if text == "" {
		return models.InboundMessage{}, false
	}

	return models.InboundMessage{
		UserID:     message.From.ID,
		ChatID:     message.Chat.ID,
		Text:       text,
		ReceivedAt: message.Time(),
	}, true
}

// replyKeyboard puts every label on its own row.
func replyKeyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

