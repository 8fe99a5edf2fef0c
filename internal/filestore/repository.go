package filestore

import (
	"context"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"
)

// storedEntry is the repository's row for one path: the currently
// reachable Slab plus the bookkeeping needed for idle expiration.
// The threshold is frozen at Create time; later Options changes never
// retroactively apply to an already-stored entry.
type storedEntry struct {
	path                string
	slab                *Slab
	expirationThreshold time.Duration
	uploadID            uuid.UUID

	lastAccessUnixNano atomic.Int64
	accessCount        atomic.Int64
}

func (e *storedEntry) expiresAt() time.Time {
	return time.Unix(0, e.lastAccessUnixNano.Load()).Add(e.expirationThreshold)
}

// recordCreate sets lastAccess without counting as an access; Create
// installs an entry but the spec only grows accessCount on Lookup.
func (e *storedEntry) recordCreate(now time.Time) {
	e.lastAccessUnixNano.Store(now.UnixNano())
}

func (e *storedEntry) recordAccess(now time.Time) {
	e.lastAccessUnixNano.Store(now.UnixNano())
	e.accessCount.Add(1)
}

// SnapshotEntry is one row of Repository.Snapshot, consumed by the
// diagnostics collaborator.
type SnapshotEntry struct {
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Length      int       `json:"length"`
	AccessCount int64     `json:"access_count"`
	ExpiresAt   time.Time `json:"expires_at"`
	UploadID    uuid.UUID `json:"upload_id"`
}

// Repository is a concurrent keyed store of the current Slab per
// path. Create/Lookup/Delete take only one shard's lock of a sharded
// concurrent map; a background sweeper evicts idle entries without disturbing
// readers still holding a detached Slab.
type Repository struct {
	opts    Options
	entries cmap.ConcurrentMap[string, *storedEntry]
	stats   Counters
	log     *logrus.Entry
}

// New constructs a Repository. A nil logger falls back to a no-op
// discard logger so callers never need a nil check.
func New(opts Options, log *logrus.Entry) *Repository {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		discard.SetLevel(logrus.PanicLevel + 1)
		log = logrus.NewEntry(discard)
	}
	return &Repository{
		opts:    opts.withDefaults(),
		entries: cmap.New[*storedEntry](),
		log:     log,
	}
}

// Create selects an expiration threshold for path, constructs a new
// Slab and StoredEntry, and atomically installs it as the current
// entry for path. A prior entry, if any, is counted as overwritten;
// its Slab remains usable by any reader already holding it. The
// caller is responsible for feeding bytes into the returned Slab via
// Slab.Append.
func (r *Repository) Create(path, contentType string) *Slab {
	slab := newSlab(path, contentType)
	slab.onFail = func() {
		r.stats.failed.Add(1)
		r.log.WithField("path", path).Warn("slab failed before completion")
	}
	entry := &storedEntry{
		path:                path,
		slab:                slab,
		expirationThreshold: r.opts.thresholdFor(path),
		uploadID:            uuid.New(),
	}
	entry.recordCreate(r.opts.Clock.Now())

	var overwrote bool
	r.entries.Upsert(path, entry, func(exists bool, _ *storedEntry, newValue *storedEntry) *storedEntry {
		overwrote = exists
		return newValue
	})

	if overwrote {
		r.stats.overwritten.Add(1)
		r.log.WithField("path", path).Debug("create overwrote a live entry")
	} else {
		r.log.WithField("path", path).Debug("create installed a new entry")
	}
	return slab
}

// Lookup returns the current Slab for path, updating lastAccess and
// accessCount. Non-blocking. The returned Slab remains valid for the
// caller to read even if the entry is subsequently evicted from the
// map.
func (r *Repository) Lookup(path string) (*Slab, bool) {
	entry, ok := r.entries.Get(path)
	if !ok {
		return nil, false
	}
	entry.recordAccess(r.opts.Clock.Now())
	return entry.slab, true
}

// Delete atomically removes any current entry for path. Reports
// whether an entry was present; repeated deletes are a no-op, not an
// error.
func (r *Repository) Delete(path string) bool {
	existed := r.entries.RemoveCb(path, func(_ string, _ *storedEntry, exists bool) bool {
		return exists
	})
	if existed {
		r.stats.deleted.Add(1)
		r.log.WithField("path", path).Debug("deleted entry")
	}
	return existed
}

// Snapshot returns every current entry, sorted by path, for the
// diagnostics collaborator.
func (r *Repository) Snapshot() []SnapshotEntry {
	out := make([]SnapshotEntry, 0, r.entries.Count())
	r.entries.IterCb(func(path string, e *storedEntry) {
		out = append(out, SnapshotEntry{
			Path:        path,
			ContentType: e.slab.ContentType(),
			Length:      e.slab.Length(),
			AccessCount: e.accessCount.Load(),
			ExpiresAt:   e.expiresAt(),
			UploadID:    e.uploadID,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Counters returns the observable transition counters (see stats.go).
func (r *Repository) Counters() CountersSnapshot {
	return r.stats.Snapshot()
}

// RunSweeper blocks, evicting idle entries every SweepInterval until
// ctx is cancelled. Callers run it in its own goroutine.
func (r *Repository) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep removes every entry whose expiresAt has passed. The removal
// predicate recomputes expiresAt from the entry actually present in
// the map at removal time (under that shard's lock), so an entry
// concurrently replaced by Create or touched by Lookup since the scan
// started is never evicted out from under its new version.
func (r *Repository) sweep() {
	now := r.opts.Clock.Now()

	var candidates []string
	r.entries.IterCb(func(path string, e *storedEntry) {
		if e.expiresAt().Before(now) {
			candidates = append(candidates, path)
		}
	})

	for _, path := range candidates {
		removed := r.entries.RemoveCb(path, func(_ string, e *storedEntry, exists bool) bool {
			return exists && e.expiresAt().Before(now)
		})
		if removed {
			r.stats.evicted.Add(1)
			r.log.WithField("path", path).Info("sweeper evicted idle entry")
		}
	}
}
