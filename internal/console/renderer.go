package console

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns prompt text (Telegram-flavoured Markdown) into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer with automatic light/dark detection.
// It falls back to plain text when glamour cannot be initialized.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns its input unchanged.
func PlainRenderer(s string) (string, error) {
	return s + "\n", nil
}
