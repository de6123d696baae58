package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/autopeer-io/sensorlink/pkg/log"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging tags every request with an id and a request-scoped logger,
// available to handlers through log.FromContext. Requests are logged at debug
// level, server errors at warn level.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		logger := log.WithValues("requestID", id, "method", r.Method, "path", r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(log.NewContext(r.Context(), logger)))

		if rec.status >= http.StatusInternalServerError {
			logger.Warn("HTTP request failed", "status", rec.status, "duration", time.Since(start))
			return
		}
		logger.Debug("HTTP request", "status", rec.status, "duration", time.Since(start))
	})
}
