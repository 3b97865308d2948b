// Package script defines the compiled authoring vocabulary consumed by the
// engine: game events, condition trees, trigger actions, and scheduling
// policies.
//
// Everything in this package is a closed tagged-variant type. The vocabulary
// is fixed at load time - the loader produces these values from a validated
// world bundle, and the engine evaluates them by type switch. There is no
// virtual dispatch and no way for content to extend the set of variants at
// runtime, which keeps evaluation deterministic and exhaustively testable.
//
// Values in this package are immutable after load. The engine never mutates
// a Condition or Action; mutable runtime state (fired flags, queue entries)
// lives in the engine package.
package script
