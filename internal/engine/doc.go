// Package engine evaluates triggers and runs the turn pipeline.
//
// The package owns four cooperating components, wired together by New and
// sharing exclusive access to the world for one command cycle at a time:
//
//   - Evaluator: pure condition evaluation against world state, with
//     reference failures logged and folded to false.
//   - Registry: declaration-ordered trigger matching for game events.
//   - Executor: best-effort action application; one bad action logs and
//     skips, it never aborts the batch.
//   - Scheduler: the future-event queue. Monotonic ids, (due turn, id)
//     drain order, and a tombstone per consumed event.
//
// The Engine sequences them into the per-command pipeline: NPC
// movement, scheduled-event drain, status ticks, ambient triggers, flush.
// Determinism is the package's load-bearing invariant: given the same
// bundle, seed, and command transcript, every run produces identical
// output.
package engine
