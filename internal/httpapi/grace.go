package httpapi

import (
	"context"
	"time"
)

// DefaultUploadGracePeriod is how long Append keeps draining after
// the client's transport-level context is cancelled, matching the
// spec's 2s grace window for media clients that close the request
// socket before the body is fully flushed.
const DefaultUploadGracePeriod = 2 * time.Second

// withUploadGracePeriod returns a context that outlives parent's
// cancellation by grace, then cancels itself. The core's Append sees
// a single, synchronous cancellation signal; the delay is entirely a
// property of this collaborator.
func withUploadGracePeriod(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(parent, func() {
		timer := time.AfterFunc(grace, cancel)
		context.AfterFunc(ctx, func() { timer.Stop() })
	})
	return ctx, func() {
		cancel()
		stop()
	}
}
