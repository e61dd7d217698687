// Package events provides the optional generation lifecycle event feed.
package events

import (
	"context"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

// Publisher emits generation lifecycle events for external consumers. The
// feed is best-effort: publish failures never affect conversation state.
type Publisher interface {
	Publish(ctx context.Context, event *model.GenerationEvent) error
	Close()
}

// Noop is the publisher used when no broker is configured.
type Noop struct{}

// NewNoop returns a publisher that discards everything.
func NewNoop() Noop {
	return Noop{}
}

// Publish discards the event.
func (Noop) Publish(ctx context.Context, event *model.GenerationEvent) error {
	return nil
}

// Close is a no-op.
func (Noop) Close() {}
