// ABOUTME: Delivery sinks for newly created notifications.
// ABOUTME: Sinks are best effort; the stored notification is the source of truth.
package notify

import (
	"context"

	"github.com/harperreed/study/internal/models"
)

// Sink delivers a notification somewhere outside the store.
type Sink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) Deliver(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}
