// Package httpapi is the HTTP collaborator the core spec deliberately
// excludes: request routing, body framing, header parsing, CORS,
// logging, and the diagnostics endpoints (rendered by
// internal/diagnostics) all live here, calling into
// internal/filestore through its published contracts.
package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/arkenfold/filehub/internal/diagnostics"
	"github.com/arkenfold/filehub/internal/filestore"
)

// Options configures a Server.
type Options struct {
	UploadGracePeriod time.Duration
	ReadChunkSize     int
	CrashLogPath      string

	// AdmissionRate/AdmissionBurst configure the per-path POST
	// limiter. Zero rate disables limiting.
	AdmissionRate  rate.Limit
	AdmissionBurst int
}

func (o Options) withDefaults() Options {
	if o.UploadGracePeriod <= 0 {
		o.UploadGracePeriod = DefaultUploadGracePeriod
	}
	if o.ReadChunkSize <= 0 {
		o.ReadChunkSize = filestore.DefaultReadChunkSize
	}
	return o
}

// Server wires a Repository up to an http.Handler implementing the
// verb table from the core spec's external-interfaces section.
type Server struct {
	repo    *filestore.Repository
	opts    Options
	log     *logrus.Entry
	limiter *admissionLimiter
	mux     *http.ServeMux
}

// NewServer builds the handler tree. Call Handler() to get the final
// http.Handler to pass to an http.Server.
func NewServer(repo *filestore.Repository, opts Options, log *logrus.Entry) *Server {
	opts = opts.withDefaults()
	if log == nil {
		log = discardLogger()
	}
	var limiter *admissionLimiter
	if opts.AdmissionRate > 0 {
		limiter = newAdmissionLimiter(opts.AdmissionRate, opts.AdmissionBurst)
	}

	s := &Server{repo: repo, opts: opts, log: log, limiter: limiter, mux: http.NewServeMux()}
	s.routes()
	return s
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel + 1)
	return logrus.NewEntry(l)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/files/", s.handleFiles)
	s.mux.HandleFunc("/diagnostics", s.handleDiagnosticsHTML)
	s.mux.HandleFunc("/diagnostics.json", s.handleDiagnosticsJSON)
}

// Handler returns the fully wrapped http.Handler: CORS, panic
// recovery, then request logging, then routing.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = withLogging(s.log, h)
	h = withRecover(s.log, s.opts.CrashLogPath, h)
	h = withCORS(h)
	return h
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/files"):]
	if path == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		s.handleUpload(w, r, path)
	case http.MethodGet:
		s.handleDownload(w, r, path)
	case http.MethodDelete:
		s.handleDelete(w, r, path)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, path string) {
	if s.limiter != nil && !s.limiter.Allow(path) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	slab := s.repo.Create(path, contentType)

	ctx, cancel := withUploadGracePeriod(r.Context(), s.opts.UploadGracePeriod)
	defer cancel()

	src := newRequestSource(r, s.opts.ReadChunkSize)
	if err := slab.Append(ctx, src); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("upload aborted")
		http.Error(w, "upload failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, path string) {
	slab, ok := s.repo.Lookup(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	sink := newResponseSink(w, slab.ContentType())
	outcome, err := slab.Read(r.Context(), sink)
	switch outcome {
	case filestore.ReadOK:
	case filestore.ReadIncomplete:
		if !sink.headerWritten {
			http.NotFound(w, r)
			return
		}
		// Headers already flushed: the only honest move left is to
		// drop the connection, matching the "abort, don't 404" rule
		// for a failure observed after the first byte.
		s.log.WithField("path", path).Warn("download aborted: slab failed mid-stream")
		panic(http.ErrAbortHandler)
	case filestore.ReadSinkClosed:
		if err != nil {
			s.log.WithError(err).WithField("path", path).Debug("download ended: sink closed")
		}
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, path string) {
	s.repo.Delete(path)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDiagnosticsHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := diagnostics.WriteHTML(w, diagnostics.Collect(s.repo)); err != nil {
		s.log.WithError(err).Error("rendering diagnostics page")
	}
}

func (s *Server) handleDiagnosticsJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := diagnostics.WriteJSON(w, diagnostics.Collect(s.repo)); err != nil {
		s.log.WithError(err).Error("rendering diagnostics json")
	}
}
