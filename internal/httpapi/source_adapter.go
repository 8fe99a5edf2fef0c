package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/arkenfold/filehub/internal/filestore"
)

// requestSource adapts an *http.Request body into filestore.Source,
// reading in fixed-size chunks.
type requestSource struct {
	r         *http.Request
	chunkSize int
}

func newRequestSource(r *http.Request, chunkSize int) *requestSource {
	if chunkSize <= 0 {
		chunkSize = filestore.DefaultReadChunkSize
	}
	return &requestSource{r: r, chunkSize: chunkSize}
}

func (s *requestSource) Next(ctx context.Context) ([]byte, bool, error) {
	buf := make([]byte, s.chunkSize)
	n, err := s.r.Body.Read(buf)
	if n > 0 {
		// Body.Read can return n>0 and io.EOF in the same call; hand
		// the bytes back now and let the next Next() surface the EOF.
		return buf[:n], true, nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return nil, true, nil
}
