package engine

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// MoveNpcs runs one movement pass: every NPC with an active plan whose
// interval has elapsed takes one step. NPCs are visited in sorted id order
// and wander choices draw from the world's serialized random source, so the
// pass is deterministic for a given seed and turn.
func MoveNpcs(w *world.World, v *view.View, log *slog.Logger) {
	now := w.TurnCount
	for _, id := range w.SortedNpcIDs() {
		npc := w.Npcs[id]
		plan := npc.Movement
		if plan == nil || !plan.Active || plan.EveryTurns <= 0 {
			continue
		}
		if now-plan.LastMoved < plan.EveryTurns {
			continue
		}

		dest, ok := nextRoom(w, npc)
		if !ok {
			continue
		}
		from := npc.Room
		if err := w.MoveNpcTo(id, dest); err != nil {
			log.Warn("npc movement skipped", slog.String("npc", npc.Symbol), slog.String("error", err.Error()))
			continue
		}
		plan.LastMoved = now

		// Only announce movement the player can see.
		if from == w.Player.Room {
			v.Pushf(view.TagAmbient, "%s leaves.", npc.Name)
		} else if dest == w.Player.Room {
			v.Pushf(view.TagAmbient, "%s arrives.", npc.Name)
		}
	}
}

// nextRoom picks the NPC's next destination per its plan. Returns false
// when the plan yields no move this step.
func nextRoom(w *world.World, npc *world.Npc) (uuid.UUID, bool) {
	plan := npc.Movement
	switch plan.Kind {
	case world.MoveRoute:
		if len(plan.Route) == 0 {
			return uuid.Nil, false
		}
		dest := plan.Route[plan.Step%len(plan.Route)]
		plan.Step = (plan.Step + 1) % len(plan.Route)
		return dest, true

	case world.MoveWander:
		room, err := w.Room(npc.Room)
		if err != nil {
			return uuid.Nil, false
		}
		// Sorted directions keep the draw order independent of map iteration.
		var dirs []string
		for dir, exit := range room.Exits {
			if !exit.Hidden && !exit.Locked {
				dirs = append(dirs, dir)
			}
		}
		if len(dirs) == 0 {
			return uuid.Nil, false
		}
		sort.Strings(dirs)
		pick := dirs[w.Rand.IntN(len(dirs))]
		return room.Exits[pick].To, true

	default:
		return uuid.Nil, false
	}
}
