package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/assistant-bot/internal/catalog"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(map[string]string{
		"msg_start":       "Welcome!",
		"msg_greeting":    "Hello there.",
		"msg_about":       "We build bots.",
		"msg_return":      "Back to the menu.",
		"msg_site_url":    "https://example.com",
		"btn_hello":       "Hello",
		"btn_return":      "Menu",
		"btn_about":       "About",
		"btn_site":        "Site",
		"msg_unavailable": "Chat is unavailable.",
	})
	require.NoError(t, err)
	return c
}

func TestRoute_StartCommand(t *testing.T) {
	r := New(newCatalog(t), true)

	for _, text := range []string{"/start", "/start@assistant_bot", "/start promo"} {
		action := r.Route(text)
		assert.Equal(t, KindReply, action.Kind, text)
		assert.Equal(t, "Welcome!", action.Text, text)
		assert.Equal(t, []string{"Hello", "Menu", "About", "Site"}, action.Keyboard, text)
	}
}

func TestRoute_Buttons(t *testing.T) {
	tests := []struct {
		text  string
		reply string
	}{
		{"Hello", "Hello there."},
		{"Menu", "Back to the menu."},
		{"About", "We build bots."},
		{"Site", "https://example.com"},
	}

	for _, enabled := range []bool{true, false} {
		r := New(newCatalog(t), enabled)
		for _, tt := range tests {
			action := r.Route(tt.text)
			assert.Equal(t, KindReply, action.Kind)
			assert.Equal(t, tt.reply, action.Text)
			assert.Empty(t, action.Keyboard)
		}
	}
}

func TestRoute_ExactMatchOnly(t *testing.T) {
	r := New(newCatalog(t), true)

	for _, text := range []string{"hello", "Hello ", " Hello", "HELLO", "About us", "/started", "start", ""} {
		assert.Equal(t, KindAssistant, r.Route(text).Kind, "%q", text)
	}
}

func TestRoute_CatchAllDisabled(t *testing.T) {
	r := New(newCatalog(t), false)

	action := r.Route("what is the weather like?")
	assert.Equal(t, KindUnavailable, action.Kind)
	assert.Equal(t, "Chat is unavailable.", action.Text)
}

func TestRoute_StartBeforeButtons(t *testing.T) {
	c, err := catalog.New(map[string]string{
		"msg_start":    "Welcome!",
		"msg_greeting": "Hello there.",
		"msg_about":    "We build bots.",
		"msg_return":   "Back to the menu.",
		"msg_site_url": "https://example.com",
		"btn_hello":    "/start",
		"btn_return":   "Menu",
		"btn_about":    "Menu",
		"btn_site":     "Site",
	})
	require.NoError(t, err)
	r := New(c, true)

	assert.Equal(t, "Welcome!", r.Route("/start").Text)
	// Duplicate labels resolve to the first declared button.
	assert.Equal(t, "Back to the menu.", r.Route("Menu").Text)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/start", "start"))
	assert.True(t, IsCommand("/start\nmore", "start"))
	assert.False(t, IsCommand("/Start", "start"))
	assert.False(t, IsCommand("/", "start"))
	assert.False(t, IsCommand("start", "start"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "reply", KindReply.String())
	assert.Equal(t, "assistant", KindAssistant.String())
	assert.Equal(t, "unavailable", KindUnavailable.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
