// Package router decides how an inbound message is answered: with a canned
// catalog reply, by the assistant, or with the "unavailable" notice.
package router

import (
	"strings"

	"github.com/xaenox/assistant-bot/internal/catalog"
)

const StartCommand = "start"

type Kind int

const (
	// KindReply is a canned catalog reply.
	KindReply Kind = iota
	// KindAssistant forwards the message to the AI assistant.
	KindAssistant
	// KindUnavailable answers with the fixed "feature unavailable" notice.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindReply:
		return "reply"
	case KindAssistant:
		return "assistant"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Action is the outcome of routing one message.
type Action struct {
	Kind     Kind
	Trigger  string
	Text     string
	Keyboard []string
}

type Trigger struct {
	Name   string
	Match  func(text string) bool
	Action Action
}

// Router evaluates triggers in a fixed order; the first match wins. The
// catch-all sentinel is always evaluated last.
type Router struct {
	triggers []Trigger
	catchAll bool
	fallback Action
}

// New builds the trigger list from the catalog: the start command, then every
// menu button in declaration order, then the catch-all. assistantEnabled
// controls whether unmatched text goes to the assistant or gets the notice.
func New(c *catalog.Catalog, assistantEnabled bool) *Router {
	triggers := []Trigger{{
		Name:  StartCommand,
		Match: func(text string) bool { return IsCommand(text, StartCommand) },
		Action: Action{
			Kind:     KindReply,
			Trigger:  StartCommand,
			Text:     c.Text(catalog.MsgStart),
			Keyboard: c.Keyboard(),
		},
	}}

	for _, b := range c.Buttons() {
		label := b.Label
		triggers = append(triggers, Trigger{
			Name:  "button",
			Match: func(text string) bool { return text == label },
			Action: Action{
				Kind:    KindReply,
				Trigger: "button",
				Text:    b.Reply,
			},
		})
	}

	return &Router{
		triggers: triggers,
		catchAll: assistantEnabled,
		fallback: Action{
			Kind:    KindUnavailable,
			Trigger: "unavailable",
			Text:    c.Text(catalog.MsgUnavailable),
		},
	}
}

// Route never trims or normalizes text.
func (r *Router) Route(text string) Action {
	for _, t := range r.triggers {
		if t.Match(text) {
			return t.Action
		}
	}
	if r.catchAll {
		return Action{Kind: KindAssistant, Trigger: "assistant"}
	}
	return r.fallback
}

// IsCommand reports whether text invokes the bot command name, in any of the
// forms "/name", "/name@bot" or "/name payload".
func IsCommand(text, name string) bool {
	if !strings.HasPrefix(text, "/") {
		return false
	}
	cmd := text[1:]
	if i := strings.IndexAny(cmd, " \n\t"); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd == name
}
