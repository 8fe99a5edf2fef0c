package filestore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultReadChunkSize is the amount of buffered content a Read call
// copies out from under the content lock per iteration before
// flushing to the sink.
const DefaultReadChunkSize = 16 * 1024

// ReadOutcome describes how a Slab.Read call ended.
type ReadOutcome int

const (
	// ReadOK means the reader caught up to a complete slab and every
	// byte was delivered to the sink.
	ReadOK ReadOutcome = iota
	// ReadIncomplete means the slab reached its failed terminal state
	// before (or while) this reader caught up.
	ReadIncomplete
	// ReadSinkClosed means the consumer went away, either by the sink
	// reporting completed/cancelled or by ctx being cancelled.
	ReadSinkClosed
)

func (o ReadOutcome) String() string {
	switch o {
	case ReadOK:
		return "ok"
	case ReadIncomplete:
		return "incomplete"
	case ReadSinkClosed:
		return "sink-closed"
	default:
		return "unknown"
	}
}

// Slab is a single version of a file's bytes: one producer appends
// sequentially while any number of consumers read from offset 0
// forward, blocking at the current write frontier and waking when it
// advances or the slab reaches a terminal state.
//
// A Slab is created by Repository.Create and must not be constructed
// directly outside this package.
type Slab struct {
	path        string
	contentType string

	mu      sync.Mutex
	cond    *sync.Cond
	content []byte
	complete bool
	failed   bool

	appending     atomic.Bool
	readChunkSize int

	// onFail, when set, is invoked exactly once the first time the slab
	// transitions to failed. Repository.Create wires this to its
	// failure counter; it is nil for slabs constructed directly in
	// tests.
	onFail func()
}

// setReadChunkSize overrides the catch-up chunk size; used by tests to
// exercise multi-chunk catch-up without allocating megabytes of data.
func (s *Slab) setReadChunkSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readChunkSize = n
}

func newSlab(path, contentType string) *Slab {
	s := &Slab{
		path:          path,
		contentType:   contentType,
		readChunkSize: DefaultReadChunkSize,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Path returns the slab's path. Immutable for the slab's lifetime.
func (s *Slab) Path() string { return s.path }

// ContentType returns the slab's content type. Immutable for the
// slab's lifetime.
func (s *Slab) ContentType() string { return s.contentType }

// Length returns the current committed length without blocking.
func (s *Slab) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.content)
}

// IsComplete reports whether the producer finished normally.
func (s *Slab) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// IsFailed reports whether the producer aborted before completion.
func (s *Slab) IsFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Append consumes chunks from source until it signals end-of-stream or
// an error, or ctx is cancelled. It may be called at most once per
// Slab; subsequent calls return ErrAlreadyAppending immediately
// without touching slab state.
//
// On clean end of stream the slab becomes complete and Append returns
// nil. On a source error or cancellation the slab becomes failed and
// Append returns the triggering error. Either way every reader blocked
// on this slab is woken.
func (s *Slab) Append(ctx context.Context, source Source) error {
	if !s.appending.CompareAndSwap(false, true) {
		return ErrAlreadyAppending
	}

	for {
		select {
		case <-ctx.Done():
			s.fail()
			return ctx.Err()
		default:
		}

		chunk, ok, err := source.Next(ctx)
		if err != nil {
			s.fail()
			return err
		}
		if !ok {
			s.mu.Lock()
			s.complete = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return nil
		}
		if len(chunk) == 0 {
			continue
		}

		s.mu.Lock()
		s.content = append(s.content, chunk...)
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

func (s *Slab) fail() {
	s.mu.Lock()
	if s.complete || s.failed {
		s.mu.Unlock()
		return
	}
	s.failed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.onFail != nil {
		s.onFail()
	}
}

// Read copies bytes from offset 0 forward into sink, blocking at the
// write frontier and waking on every append or terminal-state
// transition. The content lock is held only to snapshot committed
// bytes and terminal flags; the sink flush always happens outside it.
func (s *Slab) Read(ctx context.Context, sink Sink) (ReadOutcome, error) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	p := 0
	flushed := false
	chunkSize := s.readChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultReadChunkSize
	}

	for {
		s.mu.Lock()
		for p == len(s.content) && !s.complete && !s.failed && ctx.Err() == nil {
			s.cond.Wait()
		}

		switch {
		case ctx.Err() != nil:
			s.mu.Unlock()
			return ReadSinkClosed, ctx.Err()

		case s.failed:
			s.mu.Unlock()
			return ReadIncomplete, ErrIncomplete

		case p < len(s.content):
			n := len(s.content) - p
			if n > chunkSize {
				n = chunkSize
			}
			chunk := make([]byte, n)
			copy(chunk, s.content[p:p+n])
			s.mu.Unlock()

			completed, cancelled, err := sink.Flush(ctx, chunk)
			flushed = true
			if err != nil {
				return ReadSinkClosed, fmt.Errorf("filestore: sink flush: %w", err)
			}
			if completed || cancelled {
				return ReadSinkClosed, ErrSinkClosed
			}
			p += n
			// MaybeMore: loop straight back to Copy, no wait.

		case s.complete:
			s.mu.Unlock()
			if !flushed {
				// Nothing was ever appended (a zero-byte upload): flush
				// once so the sink still writes its headers instead of
				// relying on net/http's implicit 200.
				if _, _, err := sink.Flush(ctx, nil); err != nil {
					return ReadSinkClosed, fmt.Errorf("filestore: sink flush: %w", err)
				}
				flushed = true
			}
			return ReadOK, nil

		default:
			s.mu.Unlock()
		}
	}
}
