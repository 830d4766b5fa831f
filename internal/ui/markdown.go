package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders note content for the terminal. Plain output or a
// renderer failure returns the input unchanged.
func RenderMarkdown(content string, wordWrap int, colored bool) string {
	if !colored {
		return content
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
