package middleware

import (
	"net/http"
	"time"

	"github.com/sololeveling/internal/logger"
)

// RequestLog логирует каждый HTTP-запрос: method, path, статус и время выполнения (асинхронно).
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)
		logger.Debugf("http %s %s status=%d duration_ms=%d browser=%s",
			r.Method, r.URL.Path, wrap.status, time.Since(start).Milliseconds(), MaskID(GetBrowserID(r.Context())))
		logger.LogDuration("http "+r.Method+" "+r.URL.Path, start)
	})
}
