package loader

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/world"
)

// Raw authoring shapes, decoded straight from CUE. All entity references
// are symbols; cooking resolves them to ids.

type rawBundle struct {
	World    rawWorld     `json:"world"`
	Rooms    []rawRoom    `json:"rooms"`
	Items    []rawItem    `json:"items"`
	Npcs     []rawNpc     `json:"npcs"`
	Goals    []rawGoal    `json:"goals"`
	Triggers []rawTrigger `json:"triggers"`
	Schedule []rawAction  `json:"schedule"`
}

type rawWorld struct {
	Name      string `json:"name"`
	StartRoom string `json:"start_room"`
	Seed      uint64 `json:"seed"`
}

type rawExit struct {
	To     string `json:"to"`
	Hidden bool   `json:"hidden"`
	Locked bool   `json:"locked"`
}

type rawRoom struct {
	Symbol      string             `json:"symbol"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Exits       map[string]rawExit `json:"exits"`
}

type rawItem struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Portable    bool   `json:"portable"`
	Container   bool   `json:"container"`
	// Location: exactly one of these, or none for an item that starts
	// despawned.
	Room      string `json:"room"`
	Inventory bool   `json:"inventory"`
	Inside    string `json:"inside"`
	HeldBy    string `json:"held_by"`
}

type rawMovement struct {
	Kind       string   `json:"kind"`
	Route      []string `json:"route"`
	EveryTurns int      `json:"every_turns"`
	Active     bool     `json:"active"`
}

type rawNpc struct {
	Symbol      string              `json:"symbol"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Room        string              `json:"room"`
	State       string              `json:"state"`
	Dialogue    map[string][]string `json:"dialogue"`
	Movement    *rawMovement        `json:"movement"`
}

type rawGoal struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type rawEvent struct {
	Kind string `json:"kind"`
	Room string `json:"room"`
	Item string `json:"item"`
	Npc  string `json:"npc"`
}

type rawTrigger struct {
	Name     string      `json:"name"`
	On       rawEvent    `json:"on"`
	When     *rawCond    `json:"when"`
	FireOnce bool        `json:"fire_once"`
	Actions  []rawAction `json:"actions"`
}

// Bundle is a fully cooked authoring bundle: a ready world, the trigger set
// to register, and scheduling actions to apply once when a session begins.
type Bundle struct {
	World    *world.World
	Triggers []*script.Trigger
	Seeds    []script.Action
}

// Load reads and cooks a CUE bundle from disk.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return LoadBytes(data, path)
}

// LoadBytes cooks a CUE bundle from memory. name is used in error messages.
func LoadBytes(data []byte, name string) (*Bundle, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(name))
	if err := val.Err(); err != nil {
		return nil, &BundleError{Path: name, Message: cueerrors.Details(err, nil)}
	}

	var raw rawBundle
	if err := val.Decode(&raw); err != nil {
		return nil, &BundleError{Path: name, Message: cueerrors.Details(err, nil)}
	}
	return cook(&raw)
}

// cook resolves symbols, validates cross-references, and builds the world.
// All problems are collected before failing.
func cook(raw *rawBundle) (*Bundle, error) {
	errs := &ErrorList{}
	c := &cooker{
		raw:   raw,
		errs:  errs,
		rooms: make(map[string]uuid.UUID),
		items: make(map[string]uuid.UUID),
		npcs:  make(map[string]uuid.UUID),
		goals: make(map[string]uuid.UUID),
	}

	w := c.cookWorld()
	triggers := c.cookTriggers()
	seeds := c.cookSchedule()

	if !errs.empty() {
		return nil, errs
	}
	return &Bundle{World: w, Triggers: triggers, Seeds: seeds}, nil
}

type cooker struct {
	raw  *rawBundle
	errs *ErrorList

	rooms map[string]uuid.UUID
	items map[string]uuid.UUID
	npcs  map[string]uuid.UUID
	goals map[string]uuid.UUID
}

// nfc normalizes player-visible text.
func nfc(s string) string { return norm.NFC.String(s) }

func (c *cooker) cookWorld() *world.World {
	w := world.New(nfc(c.raw.World.Name), c.raw.World.Seed)

	// First pass declares every symbol so cross-references can resolve
	// regardless of declaration order.
	for i, r := range c.raw.Rooms {
		if r.Symbol == "" {
			c.errs.add(fmt.Sprintf("rooms[%d]", i), "symbol is required")
			continue
		}
		if _, dup := c.rooms[r.Symbol]; dup {
			c.errs.add(fmt.Sprintf("rooms[%d]", i), "duplicate symbol %q", r.Symbol)
			continue
		}
		c.rooms[r.Symbol] = world.SymbolID(r.Symbol)
	}
	for i, it := range c.raw.Items {
		if it.Symbol == "" {
			c.errs.add(fmt.Sprintf("items[%d]", i), "symbol is required")
			continue
		}
		if _, dup := c.items[it.Symbol]; dup {
			c.errs.add(fmt.Sprintf("items[%d]", i), "duplicate symbol %q", it.Symbol)
			continue
		}
		c.items[it.Symbol] = world.SymbolID(it.Symbol)
	}
	for i, n := range c.raw.Npcs {
		if n.Symbol == "" {
			c.errs.add(fmt.Sprintf("npcs[%d]", i), "symbol is required")
			continue
		}
		if _, dup := c.npcs[n.Symbol]; dup {
			c.errs.add(fmt.Sprintf("npcs[%d]", i), "duplicate symbol %q", n.Symbol)
			continue
		}
		c.npcs[n.Symbol] = world.SymbolID(n.Symbol)
	}
	for i, g := range c.raw.Goals {
		if g.Symbol == "" {
			c.errs.add(fmt.Sprintf("goals[%d]", i), "symbol is required")
			continue
		}
		if _, dup := c.goals[g.Symbol]; dup {
			c.errs.add(fmt.Sprintf("goals[%d]", i), "duplicate symbol %q", g.Symbol)
			continue
		}
		c.goals[g.Symbol] = world.SymbolID(g.Symbol)
	}

	// Second pass builds entities and resolves references.
	for _, r := range c.raw.Rooms {
		id, ok := c.rooms[r.Symbol]
		if !ok {
			continue
		}
		room := &world.Room{
			ID:          id,
			Symbol:      r.Symbol,
			Name:        nfc(r.Name),
			Description: nfc(r.Description),
			Exits:       make(map[string]*world.Exit, len(r.Exits)),
		}
		for dir, exit := range r.Exits {
			to, ok := c.rooms[exit.To]
			if !ok {
				c.errs.add(fmt.Sprintf("rooms.%s.exits.%s", r.Symbol, dir), "unknown room %q", exit.To)
				continue
			}
			room.Exits[dir] = &world.Exit{To: to, Hidden: exit.Hidden, Locked: exit.Locked}
		}
		w.Rooms[id] = room
	}

	for _, it := range c.raw.Items {
		id, ok := c.items[it.Symbol]
		if !ok {
			continue
		}
		w.Items[id] = &world.Item{
			ID:          id,
			Symbol:      it.Symbol,
			Name:        nfc(it.Name),
			Description: nfc(it.Description),
			Portable:    it.Portable,
			Container:   it.Container,
			Location:    world.Nowhere(),
		}
	}

	for _, n := range c.raw.Npcs {
		id, ok := c.npcs[n.Symbol]
		if !ok {
			continue
		}
		npc := &world.Npc{
			ID:          id,
			Symbol:      n.Symbol,
			Name:        nfc(n.Name),
			Description: nfc(n.Description),
			State:       n.State,
		}
		if room, ok := c.rooms[n.Room]; ok {
			npc.Room = room
		} else {
			c.errs.add(fmt.Sprintf("npcs.%s.room", n.Symbol), "unknown room %q", n.Room)
		}
		if len(n.Dialogue) > 0 {
			npc.Dialogue = make(map[string][]string, len(n.Dialogue))
			for state, lines := range n.Dialogue {
				normalized := make([]string, len(lines))
				for i, line := range lines {
					normalized[i] = nfc(line)
				}
				npc.Dialogue[state] = normalized
			}
		}
		npc.Movement = c.cookMovement(n)
		w.Npcs[id] = npc
	}

	for _, g := range c.raw.Goals {
		id, ok := c.goals[g.Symbol]
		if !ok {
			continue
		}
		w.Goals[id] = &world.Goal{ID: id, Symbol: g.Symbol, Name: nfc(g.Name)}
	}

	// Placement runs after every entity exists.
	c.placeItems(w)
	c.placeNpcs(w)

	if start, ok := c.rooms[c.raw.World.StartRoom]; ok {
		if err := w.MovePlayerTo(start); err != nil {
			c.errs.add("world.start_room", "%v", err)
		}
	} else {
		c.errs.add("world.start_room", "unknown room %q", c.raw.World.StartRoom)
	}
	return w
}

func (c *cooker) cookMovement(n rawNpc) *world.MovementPlan {
	m := n.Movement
	if m == nil {
		return nil
	}
	path := fmt.Sprintf("npcs.%s.movement", n.Symbol)
	plan := &world.MovementPlan{EveryTurns: m.EveryTurns, Active: m.Active}
	switch m.Kind {
	case "route":
		plan.Kind = world.MoveRoute
		for _, sym := range m.Route {
			room, ok := c.rooms[sym]
			if !ok {
				c.errs.add(path+".route", "unknown room %q", sym)
				continue
			}
			plan.Route = append(plan.Route, room)
		}
		if len(plan.Route) == 0 {
			c.errs.add(path+".route", "route movement needs at least one room")
		}
	case "wander":
		plan.Kind = world.MoveWander
	default:
		c.errs.add(path+".kind", "unknown movement kind %q", m.Kind)
		return nil
	}
	if plan.EveryTurns < 1 {
		c.errs.add(path+".every_turns", "must be at least 1, got %d", m.EveryTurns)
	}
	return plan
}

func (c *cooker) placeItems(w *world.World) {
	for _, it := range c.raw.Items {
		id, ok := c.items[it.Symbol]
		if !ok {
			continue
		}
		path := fmt.Sprintf("items.%s", it.Symbol)
		switch {
		case it.Room != "":
			room, ok := c.rooms[it.Room]
			if !ok {
				c.errs.add(path+".room", "unknown room %q", it.Room)
				continue
			}
			if err := w.PlaceItemInRoom(id, room); err != nil {
				c.errs.add(path, "%v", err)
			}
		case it.Inventory:
			if err := w.PlaceItemInInventory(id); err != nil {
				c.errs.add(path, "%v", err)
			}
		case it.Inside != "":
			container, ok := c.items[it.Inside]
			if !ok {
				c.errs.add(path+".inside", "unknown item %q", it.Inside)
				continue
			}
			if err := w.PlaceItemInContainer(id, container); err != nil {
				c.errs.add(path, "%v", err)
			}
		case it.HeldBy != "":
			npc, ok := c.npcs[it.HeldBy]
			if !ok {
				c.errs.add(path+".held_by", "unknown npc %q", it.HeldBy)
				continue
			}
			if err := w.GiveItemToNpc(id, npc); err != nil {
				c.errs.add(path, "%v", err)
			}
		}
	}
}

func (c *cooker) placeNpcs(w *world.World) {
	for _, n := range c.raw.Npcs {
		id, ok := c.npcs[n.Symbol]
		if !ok {
			continue
		}
		npc := w.Npcs[id]
		if room, ok := w.Rooms[npc.Room]; ok {
			room.Npcs = append(room.Npcs, id)
		}
	}
}

func (c *cooker) cookTriggers() []*script.Trigger {
	triggers := make([]*script.Trigger, 0, len(c.raw.Triggers))
	for i, t := range c.raw.Triggers {
		path := fmt.Sprintf("triggers[%d]", i)
		if t.Name == "" {
			c.errs.add(path, "name is required")
			continue
		}
		path = fmt.Sprintf("triggers.%s", t.Name)

		on, ok := c.cookEvent(path+".on", t.On)
		if !ok {
			continue
		}
		when := c.cookCond(path+".when", t.When)
		actions := c.cookActions(path+".actions", t.Actions)

		triggers = append(triggers, &script.Trigger{
			ID:       world.SymbolID("trigger/" + t.Name),
			Name:     t.Name,
			On:       on,
			When:     script.Flatten(when),
			Actions:  actions,
			FireOnce: t.FireOnce,
		})
	}
	return triggers
}

// cookSchedule resolves the bundle's pre-seeded scheduled events. Only
// scheduling actions make sense before any command has run, so everything
// else is rejected.
func (c *cooker) cookSchedule() []script.Action {
	seeds := make([]script.Action, 0, len(c.raw.Schedule))
	for i := range c.raw.Schedule {
		path := fmt.Sprintf("schedule[%d]", i)
		a, ok := c.cookAction(path, &c.raw.Schedule[i])
		if !ok {
			continue
		}
		switch a.(type) {
		case script.ScheduleIn, script.ScheduleAt:
			seeds = append(seeds, a)
		default:
			c.errs.add(path, "only schedule_in and schedule_at are allowed here, got %q", c.raw.Schedule[i].Type)
		}
	}
	return seeds
}

func (c *cooker) cookEvent(path string, raw rawEvent) (script.Event, bool) {
	kind := script.EventKind(raw.Kind)
	if !script.ValidEventKinds[kind] {
		c.errs.add(path+".kind", "unknown event kind %q", raw.Kind)
		return script.Event{}, false
	}
	ev := script.Event{Kind: kind}
	ok := true
	if raw.Room != "" {
		ev.Room = c.lookupRoom(path+".room", raw.Room, &ok)
	}
	if raw.Item != "" {
		ev.Item = c.lookupItem(path+".item", raw.Item, &ok)
	}
	if raw.Npc != "" {
		ev.Npc = c.lookupNpc(path+".npc", raw.Npc, &ok)
	}
	return ev, ok
}

func (c *cooker) lookupRoom(path, sym string, ok *bool) uuid.UUID {
	if id, found := c.rooms[sym]; found {
		return id
	}
	c.errs.add(path, "unknown room %q", sym)
	*ok = false
	return uuid.Nil
}

func (c *cooker) lookupItem(path, sym string, ok *bool) uuid.UUID {
	if id, found := c.items[sym]; found {
		return id
	}
	c.errs.add(path, "unknown item %q", sym)
	*ok = false
	return uuid.Nil
}

func (c *cooker) lookupNpc(path, sym string, ok *bool) uuid.UUID {
	if id, found := c.npcs[sym]; found {
		return id
	}
	c.errs.add(path, "unknown npc %q", sym)
	*ok = false
	return uuid.Nil
}

func (c *cooker) lookupGoal(path, sym string, ok *bool) uuid.UUID {
	if id, found := c.goals[sym]; found {
		return id
	}
	c.errs.add(path, "unknown goal %q", sym)
	*ok = false
	return uuid.Nil
}
