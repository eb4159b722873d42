// Package catalog holds the static reply texts and menu button labels.
// A Catalog is loaded once at startup and never changes afterwards.
package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Key string

const (
	MsgStart    Key = "msg_start"
	MsgGreeting Key = "msg_greeting"
	MsgAbout    Key = "msg_about"
	MsgReturn   Key = "msg_return"
	MsgSiteURL  Key = "msg_site_url"

	BtnHello  Key = "btn_hello"
	BtnReturn Key = "btn_return"
	BtnAbout  Key = "btn_about"
	BtnSite   Key = "btn_site"

	MsgUnavailable        Key = "msg_unavailable"
	MsgUnexpectedResponse Key = "msg_unexpected_response"
	MsgRunStatus          Key = "msg_run_status"
	MsgTryLater           Key = "msg_try_later"
)

// StatusPlaceholder is replaced with the run status in MsgRunStatus.
const StatusPlaceholder = "{status}"

var required = []Key{
	MsgStart, MsgGreeting, MsgAbout, MsgReturn, MsgSiteURL,
	BtnHello, BtnReturn, BtnAbout, BtnSite,
}

var defaults = map[Key]string{
	MsgUnavailable:        "Sorry, the chat feature is currently unavailable.",
	MsgUnexpectedResponse: "Sorry, something odd happened while getting the answer.",
	MsgRunStatus:          "Sorry, an error occurred while processing your message. Status: " + StatusPlaceholder,
	MsgTryLater:           "Sorry, an unexpected error occurred. Please try again later.",
}

// Button is a menu entry: the label the user taps and the text sent back.
type Button struct {
	Label string
	Reply string
}

type Catalog struct {
	texts   map[Key]string
	buttons []Button
}

// Load reads the catalog from a YAML (or any viper-supported) file.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	texts := make(map[string]string)
	for _, key := range v.AllKeys() {
		texts[key] = v.GetString(key)
	}
	return New(texts)
}

// New builds a catalog from raw key/text pairs. Every required key must be
// present and non-empty; optional keys fall back to built-in texts.
func New(texts map[string]string) (*Catalog, error) {
	c := &Catalog{texts: make(map[Key]string, len(defaults)+len(required))}
	for key, text := range defaults {
		c.texts[key] = text
	}

	var missing []string
	for _, key := range required {
		text, ok := texts[string(key)]
		if !ok || text == "" {
			missing = append(missing, string(key))
			continue
		}
		c.texts[key] = text
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("catalog is missing keys: %s", strings.Join(missing, ", "))
	}

	for key := range defaults {
		if text, ok := texts[string(key)]; ok && text != "" {
			c.texts[key] = text
		}
	}

	c.buttons = []Button{
		{Label: c.texts[BtnHello], Reply: c.texts[MsgGreeting]},
		{Label: c.texts[BtnReturn], Reply: c.texts[MsgReturn]},
		{Label: c.texts[BtnAbout], Reply: c.texts[MsgAbout]},
		{Label: c.texts[BtnSite], Reply: c.texts[MsgSiteURL]},
	}
	return c, nil
}

func (c *Catalog) Text(key Key) string {
	return c.texts[key]
}

// Buttons returns the menu in declaration order.
func (c *Catalog) Buttons() []Button {
	return append([]Button(nil), c.buttons...)
}

// Keyboard returns the button labels in declaration order.
func (c *Catalog) Keyboard() []string {
	labels := make([]string, len(c.buttons))
	for i, b := range c.buttons {
		labels[i] = b.Label
	}
	return labels
}

// RunStatusReply renders the apology for a run that ended with status.
func (c *Catalog) RunStatusReply(status string) string {
	return strings.ReplaceAll(c.texts[MsgRunStatus], StatusPlaceholder, status)
}
