package script

import "github.com/google/uuid"

// Action is a sealed interface over the trigger action vocabulary. Actions
// are applied in list order by the engine's executor; each variant is a
// single world or view mutation.
type Action interface {
	act() // sealed
}

// ShowMessage displays a line of narrative text to the player.
type ShowMessage struct {
	Text string
}

func (ShowMessage) act() {}

// SpawnItemInRoom places an item in a specific room.
type SpawnItemInRoom struct {
	Item uuid.UUID
	Room uuid.UUID
}

func (SpawnItemInRoom) act() {}

// SpawnItemInInventory places an item directly in the player's inventory.
type SpawnItemInInventory struct {
	Item uuid.UUID
}

func (SpawnItemInInventory) act() {}

// SpawnItemCurrentRoom places an item in whatever room the player occupies
// when the action fires.
type SpawnItemCurrentRoom struct {
	Item uuid.UUID
}

func (SpawnItemCurrentRoom) act() {}

// DespawnItem removes an item from the world entirely.
type DespawnItem struct {
	Item uuid.UUID
}

func (DespawnItem) act() {}

// SetFlag gives the player a simple flag. Duration > 0 makes it a timed
// status effect that expires that many turns later.
type SetFlag struct {
	Flag     string
	Duration int
}

func (SetFlag) act() {}

// ClearFlag removes a flag from the player.
type ClearFlag struct {
	Flag string
}

func (ClearFlag) act() {}

// AdvanceFlag steps a sequence flag forward by one.
type AdvanceFlag struct {
	Flag string
}

func (AdvanceFlag) act() {}

// ResetFlag rewinds a sequence flag to step zero.
type ResetFlag struct {
	Flag string
}

func (ResetFlag) act() {}

// RevealExit makes a hidden exit visible and usable.
type RevealExit struct {
	From      uuid.UUID
	Direction string
}

func (RevealExit) act() {}

// LockExit locks an exit in a given direction.
type LockExit struct {
	From      uuid.UUID
	Direction string
}

func (LockExit) act() {}

// UnlockExit unlocks an exit in a given direction.
type UnlockExit struct {
	From      uuid.UUID
	Direction string
}

func (UnlockExit) act() {}

// AwardPoints adds to the player's score. Negative values subtract.
type AwardPoints struct {
	Points int
}

func (AwardPoints) act() {}

// SetNpcState changes an NPC's behavioral state.
type SetNpcState struct {
	Npc   uuid.UUID
	State string
}

func (SetNpcState) act() {}

// NpcSays makes an NPC speak a specific line.
type NpcSays struct {
	Npc   uuid.UUID
	Quote string
}

func (NpcSays) act() {}

// PushPlayerTo instantly moves the player to a room.
type PushPlayerTo struct {
	Room uuid.UUID
}

func (PushPlayerTo) act() {}

// CompleteGoal marks a goal as done.
type CompleteGoal struct {
	Goal uuid.UUID
}

func (CompleteGoal) act() {}

// ScheduleIn defers a list of actions by a relative number of turns. When
// the due turn arrives the condition is evaluated; OnFalse decides what
// happens if it fails.
type ScheduleIn struct {
	Turns   int
	When    Condition // nil = unconditional
	OnFalse OnFalsePolicy
	Actions []Action
	Note    string
}

func (ScheduleIn) act() {}

// ScheduleAt defers a list of actions to an absolute turn number.
type ScheduleAt struct {
	Turn    int
	When    Condition // nil = unconditional
	OnFalse OnFalsePolicy
	Actions []Action
	Note    string
}

func (ScheduleAt) act() {}

// PolicyKind categorizes on-false policies for due scheduled events.
type PolicyKind string

const (
	// PolicyCancel removes the event permanently when its condition is false.
	PolicyCancel PolicyKind = "cancel"
	// PolicyRetryAfter reschedules the event Turns turns later.
	PolicyRetryAfter PolicyKind = "retry_after"
	// PolicyRetryNextTurn is authoring sugar for RetryAfter with one turn.
	PolicyRetryNextTurn PolicyKind = "retry_next_turn"
)

// OnFalsePolicy describes what the scheduler does with a due event whose
// condition evaluates false. The zero value is Cancel.
type OnFalsePolicy struct {
	Kind  PolicyKind `json:"kind"`
	Turns int        `json:"turns,omitempty"` // meaningful for retry_after only
}

// Cancel returns the cancel policy.
func Cancel() OnFalsePolicy {
	return OnFalsePolicy{Kind: PolicyCancel}
}

// RetryAfter returns a retry policy with the given turn delay. The engine
// clamps non-positive delays to one turn at resolution time.
func RetryAfter(turns int) OnFalsePolicy {
	return OnFalsePolicy{Kind: PolicyRetryAfter, Turns: turns}
}

// RetryNextTurn returns the next-turn retry policy.
func RetryNextTurn() OnFalsePolicy {
	return OnFalsePolicy{Kind: PolicyRetryNextTurn}
}

// RetryDelay returns the effective delay in turns for a retry policy, with
// non-positive values clamped to 1. Clamped reports whether clamping was
// applied so the caller can log a policy warning. Cancel policies return 0.
func (p OnFalsePolicy) RetryDelay() (turns int, clamped bool) {
	switch p.Kind {
	case PolicyRetryNextTurn:
		return 1, false
	case PolicyRetryAfter:
		if p.Turns < 1 {
			return 1, true
		}
		return p.Turns, false
	default:
		return 0, false
	}
}

// IsRetry reports whether the policy reschedules rather than cancels.
func (p OnFalsePolicy) IsRetry() bool {
	return p.Kind == PolicyRetryAfter || p.Kind == PolicyRetryNextTurn
}
