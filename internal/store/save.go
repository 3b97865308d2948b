package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/engine"
	"github.com/roach88/amble/internal/world"
)

// ErrNoSuchSlot is returned when loading or deleting a slot that does not
// exist.
var ErrNoSuchSlot = errors.New("no such save slot")

// SaveData is everything a session needs to resume: the world, the
// scheduler queue, and per-trigger runtime state.
type SaveData struct {
	BundleName string
	World      *world.World
	Scheduler  *engine.SchedulerSnapshot
	Triggers   map[uuid.UUID]*engine.TriggerState
}

// SlotInfo summarizes one save slot for listings.
type SlotInfo struct {
	Slot       string
	BundleName string
	TurnCount  int
	SavedAt    time.Time
}

// Save writes a slot, replacing any previous save under the same name. The
// three documents land in one statement, so a crash mid-save leaves the old
// slot intact.
func (s *Store) Save(ctx context.Context, slot string, data *SaveData) error {
	worldJSON, err := json.Marshal(data.World)
	if err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	schedJSON, err := json.Marshal(data.Scheduler)
	if err != nil {
		return fmt.Errorf("encode scheduler: %w", err)
	}
	trigJSON, err := json.Marshal(data.Triggers)
	if err != nil {
		return fmt.Errorf("encode trigger state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, bundle_name, turn_count, world_json, scheduler_json, triggers_json, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(slot) DO UPDATE SET
			bundle_name    = excluded.bundle_name,
			turn_count     = excluded.turn_count,
			world_json     = excluded.world_json,
			scheduler_json = excluded.scheduler_json,
			triggers_json  = excluded.triggers_json,
			saved_at       = excluded.saved_at`,
		slot, data.BundleName, data.World.TurnCount, worldJSON, schedJSON, trigJSON)
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	return nil
}

// Load reads a slot back. Scheduler-queue invariants are checked by the
// engine when the snapshot is restored, not here; Load only guarantees the
// documents decode.
func (s *Store) Load(ctx context.Context, slot string) (*SaveData, error) {
	var (
		data                           SaveData
		worldJSON, schedJSON, trigJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT bundle_name, world_json, scheduler_json, triggers_json
		FROM saves WHERE slot = ?`, slot).
		Scan(&data.BundleName, &worldJSON, &schedJSON, &trigJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchSlot, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", slot, err)
	}

	data.World = &world.World{}
	if err := json.Unmarshal(worldJSON, data.World); err != nil {
		return nil, fmt.Errorf("decode world in slot %q: %w", slot, err)
	}
	data.Scheduler = &engine.SchedulerSnapshot{}
	if err := json.Unmarshal(schedJSON, data.Scheduler); err != nil {
		return nil, fmt.Errorf("decode scheduler in slot %q: %w", slot, err)
	}
	if err := json.Unmarshal(trigJSON, &data.Triggers); err != nil {
		return nil, fmt.Errorf("decode trigger state in slot %q: %w", slot, err)
	}
	return &data, nil
}

// List returns all slots, most recent first.
func (s *Store) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, bundle_name, turn_count, saved_at
		FROM saves ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var infos []SlotInfo
	for rows.Next() {
		var (
			info    SlotInfo
			savedAt string
		)
		if err := rows.Scan(&info.Slot, &info.BundleName, &info.TurnCount, &savedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if t, err := time.Parse("2006-01-02 15:04:05", savedAt); err == nil {
			info.SavedAt = t
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNoSuchSlot, slot)
	}
	return nil
}
