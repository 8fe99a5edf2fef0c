package httpapi

import (
	"context"
	"net/http"
)

// responseSink adapts an http.ResponseWriter into filestore.Sink. The
// first Flush call writes headers; CloseNotify-style disconnects
// surface as cancelled so Slab.Read can stop feeding a dead
// connection.
type responseSink struct {
	w             http.ResponseWriter
	flusher       http.Flusher
	headerWritten bool
	contentType   string
}

func newResponseSink(w http.ResponseWriter, contentType string) *responseSink {
	flusher, _ := w.(http.Flusher)
	return &responseSink{w: w, flusher: flusher, contentType: contentType}
}

func (s *responseSink) Flush(ctx context.Context, chunk []byte) (completed, cancelled bool, err error) {
	if !s.headerWritten {
		s.w.Header().Set("Content-Type", s.contentType)
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
		s.headerWritten = true
	}

	if len(chunk) > 0 {
		if _, werr := s.w.Write(chunk); werr != nil {
			return false, true, nil
		}
		if s.flusher != nil {
			s.flusher.Flush()
		}
	}

	if ctx.Err() != nil {
		return false, true, nil
	}
	return false, false, nil
}
