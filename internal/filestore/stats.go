package filestore

import "sync/atomic"

// Counters tracks observable transitions the spec requires never be
// silently swallowed: every slab that fails, every entry the sweeper
// evicts, every Create that overwrites a live entry, every explicit
// Delete.
type Counters struct {
	overwritten atomic.Int64
	evicted     atomic.Int64
	failed      atomic.Int64
	deleted     atomic.Int64
}

func (c *Counters) Overwritten() int64 { return c.overwritten.Load() }
func (c *Counters) Evicted() int64     { return c.evicted.Load() }
func (c *Counters) Failed() int64      { return c.failed.Load() }
func (c *Counters) Deleted() int64     { return c.deleted.Load() }

// CountersSnapshot is a point-in-time copy of the counters, safe to pass
// around without pinning the live atomics.
type CountersSnapshot struct {
	Overwritten int64 `json:"overwritten"`
	Evicted     int64 `json:"evicted"`
	Failed      int64 `json:"failed"`
	Deleted     int64 `json:"deleted"`
}

func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Overwritten: c.Overwritten(),
		Evicted:     c.Evicted(),
		Failed:      c.Failed(),
		Deleted:     c.Deleted(),
	}
}
