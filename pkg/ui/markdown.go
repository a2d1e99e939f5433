package ui

import (
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer wraps a glamour renderer sized to the detail pane.
// When glamour cannot be initialized the raw markdown is shown instead.
type MarkdownRenderer struct {
	width int
	tr    *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer that wraps at width cells.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	r := &MarkdownRenderer{}
	r.SetWidth(width)
	return r
}

// glamourStyle picks a standard style without querying the terminal.
func glamourStyle() string {
	switch {
	case TermProfile <= colorprofile.Ascii:
		return "notty"
	case lipgloss.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

// SetWidth rebuilds the renderer when the wrap width changes.
func (r *MarkdownRenderer) SetWidth(width int) {
	width = max(width, 20)
	if r.tr != nil && r.width == width {
		return
	}
	r.width = width
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.tr = nil
		return
	}
	r.tr = tr
}

// Render returns md formatted for the terminal.
func (r *MarkdownRenderer) Render(md string) (string, error) {
	if r.tr == nil {
		return md, nil
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return "", err
	}
	// glamour pads the output with blank lines
	return strings.Trim(out, "\n"), nil
}
