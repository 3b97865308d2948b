package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/amble/internal/view"
)

// TerminalSink renders view output to a terminal with per-tag styling.
type TerminalSink struct {
	w      io.Writer
	styles map[view.Tag]lipgloss.Style
}

// NewTerminalSink creates a styled sink writing to w.
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{
		w: w,
		styles: map[view.Tag]lipgloss.Style{
			view.TagEnvironment: lipgloss.NewStyle(),
			view.TagSuccess:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			view.TagFailure:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			view.TagDialogue:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Italic(true),
			view.TagAmbient:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
			view.TagSystem:      lipgloss.NewStyle().Faint(true),
			view.TagPoints:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
			view.TagError:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
	}
}

// Render implements view.Sink.
func (s *TerminalSink) Render(items []view.Item) error {
	for _, item := range items {
		style, ok := s.styles[item.Tag]
		if !ok {
			style = lipgloss.NewStyle()
		}
		if _, err := fmt.Fprintln(s.w, style.Render(item.Text)); err != nil {
			return err
		}
	}
	return nil
}

// PlainSink renders view output as unstyled lines. Used by replay, where
// transcripts must be byte-comparable.
type PlainSink struct {
	w io.Writer
}

// NewPlainSink creates an unstyled sink writing to w.
func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: w}
}

// Render implements view.Sink.
func (s *PlainSink) Render(items []view.Item) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(s.w, "[%s] %s\n", item.Tag, item.Text); err != nil {
			return err
		}
	}
	return nil
}
