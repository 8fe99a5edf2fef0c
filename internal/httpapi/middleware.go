package httpapi

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkenfold/filehub/internal/support"
)

// withLogging logs one line per request at Info level: method, path,
// status, and duration.
func withLogging(log *logrus.Entry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}

// withRecover turns a panic anywhere downstream into a logged crash
// report plus a 500, instead of taking the whole daemon down.
// Mirrors support.WriteCrashLog/SafeGo's discipline.
func withRecover(log *logrus.Entry, crashLogPath string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					// Deliberate mid-stream abort (see handleDownload);
					// let net/http's own recovery close the connection
					// without a crash report.
					panic(rec)
				}
				support.WriteCrashLog(crashLogPath, rec, "http-handler:"+r.URL.Path)
				log.WithField("path", r.URL.Path).Error("recovered panic in handler")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the wrapped writer so streamed downloads still
// reach the client chunk by chunk through the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withCORS permits cross-origin GETs, needed by the TUI monitor and
// browser-based consumers polling diagnostics from another origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
