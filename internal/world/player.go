package world

import "github.com/google/uuid"

// Player is the singular protagonist: current room, carried items, progress
// flags, and score.
type Player struct {
	Room      uuid.UUID        `json:"room"`
	Inventory []uuid.UUID      `json:"inventory,omitempty"`
	Flags     map[string]*Flag `json:"flags,omitempty"`
	Score     int              `json:"score"`
}

// HasFlag reports whether the named flag is set (any shape).
func (p *Player) HasFlag(name string) bool {
	_, ok := p.Flags[name]
	return ok
}

// Flag returns the named flag, or nil when unset.
func (p *Player) Flag(name string) *Flag {
	return p.Flags[name]
}

// SetFlag sets a simple flag, recording the turn for duration expiry.
// Re-setting an existing flag refreshes TurnSet.
func (p *Player) SetFlag(name string, turn, duration int) {
	if p.Flags == nil {
		p.Flags = make(map[string]*Flag)
	}
	if existing, ok := p.Flags[name]; ok {
		existing.TurnSet = turn
		existing.Duration = duration
		return
	}
	p.Flags[name] = &Flag{Name: name, TurnSet: turn, Duration: duration}
}

// SetSequenceFlag creates a sequence flag counting toward limit. If the flag
// already exists its shape is left alone.
func (p *Player) SetSequenceFlag(name string, turn, limit int) {
	if p.Flags == nil {
		p.Flags = make(map[string]*Flag)
	}
	if _, ok := p.Flags[name]; ok {
		return
	}
	p.Flags[name] = &Flag{Name: name, TurnSet: turn, Limit: limit}
}

// ClearFlag removes the named flag. Clearing an absent flag is a no-op.
func (p *Player) ClearFlag(name string) {
	delete(p.Flags, name)
}

// ExpireFlags drops timed flags whose duration has elapsed at the given
// turn and returns the names removed, sorted-by-nothing: callers wanting
// deterministic output must sort.
func (p *Player) ExpireFlags(turn int) []string {
	var expired []string
	for name, f := range p.Flags {
		if f.Expired(turn) {
			expired = append(expired, name)
		}
	}
	for _, name := range expired {
		delete(p.Flags, name)
	}
	return expired
}

// Carrying reports whether the item is in the player's inventory.
func (p *Player) Carrying(item uuid.UUID) bool {
	return containsID(p.Inventory, item)
}
