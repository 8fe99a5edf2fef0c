package filestore

import (
	"context"
	"time"
)

// Source is the producer side of an upload: a pull interface yielding
// chunks until it reports completion or an error. Implementations must
// honor ctx cancellation promptly.
type Source interface {
	// Next returns the next chunk of bytes, or ok=false once the
	// source is exhausted. err is non-nil only on a genuine failure;
	// a clean end of stream is ok=false, err=nil.
	Next(ctx context.Context) (chunk []byte, ok bool, err error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]byte, bool, error)

func (f SourceFunc) Next(ctx context.Context) ([]byte, bool, error) { return f(ctx) }

// Sink is the consumer side of a download: a chunked write interface
// whose flush reports whether the consumer is still alive.
type Sink interface {
	// Flush writes a chunk to the consumer. completed/cancelled both
	// mean the consumer is gone and Read should stop; err carries any
	// transport-level failure.
	Flush(ctx context.Context, chunk []byte) (completed, cancelled bool, err error)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, chunk []byte) (bool, bool, error)

func (f SinkFunc) Flush(ctx context.Context, chunk []byte) (bool, bool, error) { return f(ctx, chunk) }

// Clock abstracts the time source the repository uses for
// lastAccess/expiresAt bookkeeping, so tests can exercise expiration
// without sleeping. Resolution of at least one second is sufficient.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the OS wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
