package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the ID that ties a response to its log line.
const RequestIDHeader = "X-Request-Id"

const healthPath = "/api/v1/health"

// statusWriter records the status code and whether the response has been
// committed.
type statusWriter struct {
	http.ResponseWriter
	status    int
	committed bool
}

func (sw *statusWriter) WriteHeader(status int) {
	if sw.committed {
		return
	}
	sw.status = status
	sw.committed = true
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.committed = true
	return sw.ResponseWriter.Write(b)
}

// loggingMiddleware tags each request with an ID and logs it once the
// handler returns. A successful health probe is logged at debug level.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		switch {
		case sw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case r.URL.Path == healthPath && sw.status == http.StatusOK:
			level = slog.LevelDebug
		}

		logger.Log(r.Context(), level, "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware turns a handler panic into a 500 unless the response
// was already committed.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger.Error("panic recovered",
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", w.Header().Get(RequestIDHeader),
			)
			if sw, ok := w.(*statusWriter); ok && sw.committed {
				return
			}
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
