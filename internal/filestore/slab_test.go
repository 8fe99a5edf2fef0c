package filestore

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// sliceSource yields the given chunks one at a time, then ends
// cleanly. Used to drive Append deterministically in tests.
type sliceSource struct {
	chunks [][]byte
	i      int
}

func (s *sliceSource) Next(ctx context.Context) ([]byte, bool, error) {
	if s.i >= len(s.chunks) {
		return nil, false, nil
	}
	c := s.chunks[s.i]
	s.i++
	return c, true, nil
}

// errSource returns err after emitting the given chunks.
type errSource struct {
	chunks [][]byte
	i      int
	err    error
}

func (s *errSource) Next(ctx context.Context) ([]byte, bool, error) {
	if s.i < len(s.chunks) {
		c := s.chunks[s.i]
		s.i++
		return c, true, nil
	}
	return nil, false, s.err
}

// bufSink collects flushed chunks into a bytes.Buffer.
type bufSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *bufSink) Flush(ctx context.Context, chunk []byte) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(chunk)
	return false, false, nil
}

func (s *bufSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

func TestSlabPostThenGet(t *testing.T) {
	s := newSlab("/foo/bar.mp4", "application/mp4")
	want := bytes.Repeat([]byte("x"), 1<<20)

	src := &sliceSource{chunks: chunkify(want, 64*1024)}
	if err := s.Append(context.Background(), src); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !s.IsComplete() || s.IsFailed() {
		t.Fatalf("expected complete slab, got complete=%v failed=%v", s.IsComplete(), s.IsFailed())
	}

	sink := &bufSink{}
	outcome, err := s.Read(context.Background(), sink)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if outcome != ReadOK {
		t.Fatalf("expected ReadOK, got %v", outcome)
	}
	if !bytes.Equal(sink.Bytes(), want) {
		t.Fatalf("round-tripped bytes mismatch: got %d bytes, want %d", len(sink.Bytes()), len(want))
	}
}

func TestSlabReaderBlocksThenCatchesUp(t *testing.T) {
	s := newSlab("/foo", "text/plain")
	s.setReadChunkSize(4)

	readDone := make(chan struct{})
	sink := &bufSink{}
	go func() {
		defer close(readDone)
		outcome, err := s.Read(context.Background(), sink)
		if err != nil || outcome != ReadOK {
			t.Errorf("Read: outcome=%v err=%v", outcome, err)
		}
	}()

	// Give the reader a chance to block at offset 0.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-readDone:
		t.Fatalf("reader finished before any bytes were appended")
	default:
	}

	s.mu.Lock()
	s.content = append(s.content, []byte("hello ")...)
	s.cond.Broadcast()
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	s.mu.Lock()
	s.content = append(s.content, []byte("world")...)
	s.complete = true
	s.cond.Broadcast()
	s.mu.Unlock()

	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("reader did not wake within bounded time")
	}
	if got := string(sink.Bytes()); got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestSlabFailedUploadAbortsReader(t *testing.T) {
	s := newSlab("/foo", "application/octet-stream")
	boom := errors.New("boom")
	src := &errSource{chunks: [][]byte{[]byte("partial")}, err: boom}

	if err := s.Append(context.Background(), src); !errors.Is(err, boom) {
		t.Fatalf("expected Append to surface source error, got %v", err)
	}
	if !s.IsFailed() {
		t.Fatal("expected slab to be failed")
	}

	sink := &bufSink{}
	outcome, err := s.Read(context.Background(), sink)
	if outcome != ReadIncomplete || !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ReadIncomplete/ErrIncomplete, got outcome=%v err=%v", outcome, err)
	}
}

func TestSlabAppendOnlyOnce(t *testing.T) {
	s := newSlab("/foo", "text/plain")
	src := &sliceSource{}
	if err := s.Append(context.Background(), src); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := s.Append(context.Background(), src); !errors.Is(err, ErrAlreadyAppending) {
		t.Fatalf("expected ErrAlreadyAppending, got %v", err)
	}
}

func TestSlabReadHonorsCancellation(t *testing.T) {
	s := newSlab("/foo", "text/plain")
	ctx, cancel := context.WithCancel(context.Background())

	readDone := make(chan error, 1)
	go func() {
		_, err := s.Read(ctx, &bufSink{})
		readDone <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-readDone:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not honor cancellation within bounded time")
	}
	if s.IsComplete() || s.IsFailed() {
		t.Fatal("cancelling a reader must not alter slab state")
	}
}

func TestSlabTwoReadersSeeIdenticalPrefix(t *testing.T) {
	s := newSlab("/foo", "text/plain")
	want := bytes.Repeat([]byte("abcdefgh"), 4096)
	src := &sliceSource{chunks: chunkify(want, 777)}

	var wg sync.WaitGroup
	sinks := [2]*bufSink{{}, {}}
	for i := range sinks {
		wg.Add(1)
		go func(sink *bufSink) {
			defer wg.Done()
			if _, err := s.Read(context.Background(), sink); err != nil {
				t.Errorf("Read: %v", err)
			}
		}(sinks[i])
	}

	if err := s.Append(context.Background(), src); err != nil {
		t.Fatalf("Append: %v", err)
	}
	wg.Wait()

	if !bytes.Equal(sinks[0].Bytes(), want) || !bytes.Equal(sinks[1].Bytes(), want) {
		t.Fatal("concurrent readers did not converge on identical bytes")
	}
}

func TestSlabReadFlushesOnceForEmptyCompletedSlab(t *testing.T) {
	s := newSlab("/empty", "text/plain")
	if err := s.Append(context.Background(), &sliceSource{}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var flushes int
	sink := SinkFunc(func(ctx context.Context, chunk []byte) (bool, bool, error) {
		flushes++
		if len(chunk) != 0 {
			t.Fatalf("expected an empty chunk, got %d bytes", len(chunk))
		}
		return false, false, nil
	})

	outcome, err := s.Read(context.Background(), sink)
	if err != nil || outcome != ReadOK {
		t.Fatalf("Read: outcome=%v err=%v", outcome, err)
	}
	if flushes != 1 {
		t.Fatalf("expected exactly one Flush call for a zero-byte file, got %d", flushes)
	}
}

func chunkify(b []byte, size int) [][]byte {
	var out [][]byte
	for len(b) > 0 {
		n := size
		if n > len(b) {
			n = len(b)
		}
		out = append(out, b[:n])
		b = b[n:]
	}
	return out
}
