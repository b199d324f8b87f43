// ABOUTME: Engine recomputes derived aggregates from the store after fact writes.
// ABOUTME: Evolution is replaced atomically; history is upserted only for days with results.
package evolution

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/models"
)

// Store is the storage surface the engine needs.
type Store interface {
	LoadFacts(ctx context.Context) (*models.Facts, error)
	ReplaceEvolution(ctx context.Context, rows []models.EvolutionRow) error
	UpsertPerformanceHistory(ctx context.Context, rows []models.PerformanceHistoryRow) error
}

// Snapshot is the outcome of one recompute pass.
type Snapshot struct {
	Facts     *models.Facts
	Evolution []models.EvolutionRow
	History   []models.PerformanceHistoryRow
	// Skipped is true when there were no tasks and nothing was written.
	Skipped bool
}

type Engine struct {
	store Store
	loc   *time.Location
	log   *logging.Logger
}

func NewEngine(store Store, loc *time.Location, log *logging.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{store: store, loc: loc, log: log}
}

// Recompute runs a full pass: load facts, compute, replace evolution, upsert history.
func (e *Engine) Recompute(ctx context.Context) (*Snapshot, error) {
	facts, err := e.store.LoadFacts(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Facts: facts}
	if len(facts.Tasks) == 0 {
		e.log.Debug("no tasks, skipping evolution recompute")
		snap.Skipped = true
		return snap, nil
	}

	snap.Evolution = ComputeEvolution(facts)
	snap.History = ComputeHistory(facts, e.loc)

	if err := e.store.ReplaceEvolution(ctx, snap.Evolution); err != nil {
		return nil, fmt.Errorf("recompute evolution: %w", err)
	}
	if err := e.store.UpsertPerformanceHistory(ctx, snap.History); err != nil {
		return nil, fmt.Errorf("recompute history: %w", err)
	}

	e.log.Debug("evolution recomputed", "subjects", len(snap.Evolution), "history_days", len(snap.History))
	return snap, nil
}

// Location returns the time zone used to bucket facts into calendar days.
func (e *Engine) Location() *time.Location {
	return e.loc
}
