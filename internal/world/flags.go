package world

import "fmt"

// Flag is a named piece of player progress. Two shapes share the type:
//
//   - Simple flags (Limit == 0) are boolean: set or absent. A Duration > 0
//     makes the flag expire Duration counted turns after TurnSet.
//   - Sequence flags (Limit > 0) count Step from 0 toward Limit and are
//     complete once Step >= Limit.
type Flag struct {
	Name     string `json:"name"`
	TurnSet  int    `json:"turn_set"`
	Duration int    `json:"duration,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Step     int    `json:"step,omitempty"`
}

// IsSequence reports whether the flag counts steps toward a limit.
func (f *Flag) IsSequence() bool { return f.Limit > 0 }

// Complete reports whether a sequence flag has reached its limit. Simple
// flags are never "complete"; their mere presence is the signal.
func (f *Flag) Complete() bool { return f.IsSequence() && f.Step >= f.Limit }

// InProgress reports whether a sequence flag has started but not finished.
func (f *Flag) InProgress() bool { return f.IsSequence() && f.Step > 0 && f.Step < f.Limit }

// Advance increments a sequence flag's step, saturating at the limit.
func (f *Flag) Advance() {
	if !f.IsSequence() {
		return
	}
	if f.Step < f.Limit {
		f.Step++
	}
}

// Reset rewinds a sequence flag to step zero.
func (f *Flag) Reset() { f.Step = 0 }

// Expired reports whether a timed flag has outlived its duration at the
// given turn. Flags with Duration == 0 never expire.
func (f *Flag) Expired(turn int) bool {
	return f.Duration > 0 && turn >= f.TurnSet+f.Duration
}

func (f *Flag) String() string {
	if f.IsSequence() {
		return fmt.Sprintf("%s [%d/%d]", f.Name, f.Step, f.Limit)
	}
	if f.Duration > 0 {
		return fmt.Sprintf("%s (expires turn %d)", f.Name, f.TurnSet+f.Duration)
	}
	return f.Name
}
