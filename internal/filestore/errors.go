package filestore

import "errors"

// ErrIncomplete is returned by Read when the slab reached its failed
// terminal state before (or while) the caller was reading it.
var ErrIncomplete = errors.New("filestore: incomplete")

// ErrSinkClosed is returned by Read when the sink reports completed or
// cancelled, meaning the consumer is gone. It is not logged as an
// error by callers; the read simply stops.
var ErrSinkClosed = errors.New("filestore: sink closed")

// ErrAlreadyAppending is returned by Append if called more than once
// on the same slab.
var ErrAlreadyAppending = errors.New("filestore: append already in progress")
