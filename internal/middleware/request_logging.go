package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/timeutil"
)

// RequestLoggingMiddleware writes per-request rows to the database off the
// request path: handlers only enqueue, a single worker batches the inserts.
type RequestLoggingMiddleware struct {
	repo    *repositories.APIRequestLogRepository
	logChan chan *models.APIRequestLog
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *loggingResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func NewRequestLoggingMiddleware(repo *repositories.APIRequestLogRepository) *RequestLoggingMiddleware {
	m := &RequestLoggingMiddleware{
		repo:    repo,
		logChan: make(chan *models.APIRequestLog, 1000),
	}
	go m.writer()
	return m
}

// writer drains the channel in batches. A full channel drops rows rather than
// blocking requests.
func (m *RequestLoggingMiddleware) writer() {
	const batchSize = 50
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*models.APIRequestLog, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = m.repo.InsertBatch(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-m.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func shouldSkipLogging(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/static/")
}

func (m *RequestLoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := timeutil.Now()
		wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(wrapped, r)

		entry := &models.APIRequestLog{
			Time:         start,
			Method:       r.Method,
			Path:         r.URL.Path,
			StatusCode:   wrapped.statusCode,
			DurationMs:   float64(time.Since(start).Microseconds()) / 1000.0,
			RequestSize:  int(r.ContentLength),
			ResponseSize: wrapped.bytesWritten,
			IPAddress:    clientIP(r),
			UserAgent:    r.UserAgent(),
		}
		if userID, ok := GetUserIDFromContext(r.Context()); ok {
			entry.UserID = &userID
		}

		select {
		case m.logChan <- entry:
		default:
			// Channel full: drop the row.
		}
	})
}

// clientIP prefers proxy headers, falling back to the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
