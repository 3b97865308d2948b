// Package view buffers player-facing output. Handlers, trigger actions, and
// scheduled events push tagged lines during a command cycle; the session
// flushes the buffer to a sink exactly once at cycle end, so output order is
// append order regardless of which stage produced a line.
package view

import "fmt"

// Tag classifies a line of output for presentation.
type Tag string

const (
	TagEnvironment Tag = "environment" // room and item descriptions
	TagSuccess     Tag = "success"     // a command that worked
	TagFailure     Tag = "failure"     // a command that could not proceed
	TagDialogue    Tag = "dialogue"    // NPC speech
	TagAmbient     Tag = "ambient"     // trigger and scheduled-event messages
	TagSystem      Tag = "system"      // saves, dev commands, meta output
	TagPoints      Tag = "points"      // score changes
	TagError       Tag = "error"       // internal problems surfaced to the player
)

// Item is one buffered line.
type Item struct {
	Tag  Tag
	Text string
}

// Sink receives flushed output. Implementations render to a terminal, a
// transcript file, or a test buffer.
type Sink interface {
	Render(items []Item) error
}

// View is the per-session output buffer. Not safe for concurrent use; the
// command cycle owns it exclusively, like the world.
type View struct {
	items []Item
}

// New returns an empty buffer.
func New() *View {
	return &View{}
}

// Push appends one line.
func (v *View) Push(tag Tag, text string) {
	v.items = append(v.items, Item{Tag: tag, Text: text})
}

// Pushf appends one formatted line.
func (v *View) Pushf(tag Tag, format string, args ...any) {
	v.Push(tag, fmt.Sprintf(format, args...))
}

// Len reports the number of buffered lines.
func (v *View) Len() int { return len(v.items) }

// Drain returns the buffered lines and resets the buffer. Used by tests and
// by sinks that want the raw items.
func (v *View) Drain() []Item {
	items := v.items
	v.items = nil
	return items
}

// Flush renders the buffered lines to the sink and resets the buffer. An
// empty buffer renders nothing.
func (v *View) Flush(sink Sink) error {
	if len(v.items) == 0 {
		return nil
	}
	return sink.Render(v.Drain())
}
