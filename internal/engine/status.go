package engine

import (
	"sort"

	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// TickStatus expires timed flags whose duration has elapsed and tells the
// player about each one. Expiry names are sorted so the announcement order
// never depends on map iteration.
func TickStatus(w *world.World, v *view.View) {
	expired := w.Player.ExpireFlags(w.TurnCount)
	sort.Strings(expired)
	for _, name := range expired {
		v.Pushf(view.TagAmbient, "The %s feeling passes.", name)
	}
}
