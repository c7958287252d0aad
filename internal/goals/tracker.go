// Package goals manages named shared savings goals, independent of the
// transaction ledger.
package goals

import (
	"context"
	"log/slog"
	"strings"

	"moodledger/internal/core"
)

// Store is the shared-goal slice of the ledger store.
type Store interface {
	InsertGoal(ctx context.Context, g core.SharedGoal) error
	DeleteGoalsByName(ctx context.Context, name string) error
	ListGoals(ctx context.Context) ([]core.SharedGoal, error)
}

// Mirror pushes the current goal table to a shared spreadsheet so
// co-savers can follow progress. Optional; nil disables mirroring.
type Mirror interface {
	Push(ctx context.Context, goals []core.SharedGoal) error
}

type Tracker struct {
	store  Store
	mirror Mirror
}

func NewTracker(store Store, mirror Mirror) *Tracker {
	return &Tracker{store: store, mirror: mirror}
}

// Upsert saves a goal row. The store is duplicate-tolerant: saving an
// existing name adds a second row rather than merging; Delete removes all
// rows for a name, so stale duplicates are recoverable.
func (t *Tracker) Upsert(ctx context.Context, name string, target, saved core.Money) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyGoalName
	}
	if target.Cents < 0 || saved.Cents < 0 {
		return core.ErrNegativeAmount
	}
	g := core.SharedGoal{Name: name, Target: target, Saved: saved}
	if err := t.store.InsertGoal(ctx, g); err != nil {
		return core.WrapKind(core.ErrPersistence, err)
	}
	t.pushMirror(ctx)
	return nil
}

// Delete removes every goal row matching the name exactly.
func (t *Tracker) Delete(ctx context.Context, name string) error {
	if err := t.store.DeleteGoalsByName(ctx, name); err != nil {
		return core.WrapKind(core.ErrPersistence, err)
	}
	t.pushMirror(ctx)
	return nil
}

// List returns all goal rows.
func (t *Tracker) List(ctx context.Context) ([]core.SharedGoal, error) {
	goals, err := t.store.ListGoals(ctx)
	if err != nil {
		return nil, core.WrapKind(core.ErrPersistence, err)
	}
	return goals, nil
}

// Progress returns saved/target clamped to [0, 1]. A goal with a
// non-positive target has no meaningful ratio and reports
// ErrDegenerateGoal instead of dividing by zero.
func Progress(g core.SharedGoal) (float64, error) {
	if g.Target.Cents <= 0 {
		return 0, core.ErrDegenerateGoal
	}
	ratio := float64(g.Saved.Cents) / float64(g.Target.Cents)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio, nil
}

// pushMirror is best-effort: the local row is already durable, a mirror
// failure only costs freshness of the shared sheet.
func (t *Tracker) pushMirror(ctx context.Context) {
	if t.mirror == nil {
		return
	}
	goals, err := t.store.ListGoals(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load goals for mirror push", "error", err)
		return
	}
	if err := t.mirror.Push(ctx, goals); err != nil {
		slog.ErrorContext(ctx, "Failed to push goals to shared sheet", "error", err)
	}
}
