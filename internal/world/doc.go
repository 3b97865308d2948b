// Package world holds the mutable game-state aggregate: rooms, items, NPCs,
// flags, goals, the player, and the turn counter.
//
// The aggregate is owned by the caller and threaded by pointer through every
// stage of the command pipeline - handler, evaluator, executor, scheduler -
// each of which has exclusive access for the duration of one command cycle. Nothing in this package reaches for ambient global state.
//
// Entity identity is a UUID derived deterministically from the authoring
// symbol (uuid.NewSHA1), so the same bundle always produces the same ids and
// transcripts replay identically across processes.
package world
