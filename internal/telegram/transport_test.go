package telegram

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInbound_Text(t *testing.T) {
	sent := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, ok := toInbound(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 11},
		Chat: &tgbotapi.Chat{ID: 22},
		Text: "  hi there ",
		Date: int(sent.Unix()),
	}})
	require.True(t, ok)
	assert.Equal(t, int64(11), msg.UserID)
	assert.Equal(t, int64(22), msg.ChatID)
	assert.Equal(t, "  hi there ", msg.Text)
	assert.True(t, sent.Equal(msg.ReceivedAt))
}

func TestToInbound_CaptionFallback(t *testing.T) {
	msg, ok := toInbound(tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 1},
		Chat:    &tgbotapi.Chat{ID: 1},
		Caption: "look at this",
	}})
	require.True(t, ok)
	assert.Equal(t, "look at this", msg.Text)
}

func TestToInbound_Skips(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
	}{
		{"no message", tgbotapi.Update{}},
		{"no sender", tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "x"}}},
		{"no text", tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := toInbound(tt.update)
			assert.False(t, ok)
		})
	}
}

func TestReplyKeyboard_OneButtonPerRowInOrder(t *testing.T) {
	markup := replyKeyboard([]string{"Hello", "Menu", "About", "Site"})

	assert.True(t, markup.ResizeKeyboard)
	require.Len(t, markup.Keyboard, 4)
	for i, label := range []string{"Hello", "Menu", "About", "Site"} {
		require.Len(t, markup.Keyboard[i], 1)
		assert.Equal(t, label, markup.Keyboard[i][0].Text)
	}
}
