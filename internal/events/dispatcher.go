// ABOUTME: Dispatcher serializes event handling: recompute, evaluate, deliver.
// ABOUTME: Only one pass runs at a time, so derived rows are never written concurrently.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/notify"
)

// Recomputer rebuilds derived aggregates.
type Recomputer interface {
	Recompute(ctx context.Context) (*evolution.Snapshot, error)
}

// Evaluator derives notifications. facts may be nil, in which case it loads its own.
type Evaluator interface {
	Evaluate(ctx context.Context, ev Event, facts *models.Facts) ([]models.Notification, error)
}

// Outcome is what one published event produced.
type Outcome struct {
	Snapshot      *evolution.Snapshot
	Notifications []models.Notification
}

type Dispatcher struct {
	mu     sync.Mutex
	engine Recomputer
	rules  Evaluator
	sinks  []notify.Sink
	log    *logging.Logger
}

func NewDispatcher(engine Recomputer, rules Evaluator, log *logging.Logger, sinks ...notify.Sink) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{engine: engine, rules: rules, sinks: sinks, log: log}
}

// Publish handles one event to completion. A recompute failure aborts the pass.
// An evaluation error is returned alongside whatever notifications were still created.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) (*Outcome, error) {
	out, err := d.handle(ctx, ev)
	if out != nil {
		d.deliver(ctx, out.Notifications)
	}
	return out, err
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) (*Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := d.log.With("event", string(ev.Kind()))
	out := &Outcome{}

	recompute := true
	if check, ok := ev.(CheckRequested); ok {
		recompute = check.Recompute
	}

	var facts *models.Facts
	if recompute {
		snap, err := d.engine.Recompute(ctx)
		if err != nil {
			log.Error("recompute failed", "error", err)
			return nil, fmt.Errorf("handle %s: %w", ev.Kind(), err)
		}
		out.Snapshot = snap
		facts = snap.Facts
	}

	created, err := d.rules.Evaluate(ctx, ev, facts)
	out.Notifications = created
	if err != nil {
		log.Warn("evaluation finished with errors", "error", err, "created", len(created))
		return out, fmt.Errorf("handle %s: %w", ev.Kind(), err)
	}
	if len(created) > 0 {
		log.Info("notifications created", "count", len(created))
	}
	return out, nil
}

func (d *Dispatcher) deliver(ctx context.Context, notifications []models.Notification) {
	for _, n := range notifications {
		for _, sink := range d.sinks {
			if err := sink.Deliver(ctx, n); err != nil {
				d.log.Warn("notification delivery failed", "notification_id", n.ID, "error", err)
			}
		}
	}
}
