package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

type requestIDKey struct{}

// probePaths are logged on their first success and on every failure. Repeated
// successful probes are dropped so that orchestrator polling does not drown
// out search traffic.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestIDFrom returns the request ID stored by RequestLog, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided and propagates it through
// the response header, the echo context and the request context.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var (
		mu          sync.Mutex
		probeLogged = map[string]bool{}
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)
			c.SetRequest(c.Request().WithContext(
				context.WithValue(c.Request().Context(), requestIDKey{}, reqID),
			))

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			failed := status >= 400

			if _, probe := probePaths[path]; probe && !failed {
				mu.Lock()
				seen := probeLogged[path]
				probeLogged[path] = true
				mu.Unlock()
				if seen {
					return err
				}
			}

			level := slog.LevelInfo
			switch {
			case status >= 500 && !isProbe(path):
				level = slog.LevelError
			case failed:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("bytes_out", c.Response().Size),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", reqID),
			}
			// Set when Tracing runs inside this middleware.
			if sc := trace.SpanContextFromContext(c.Request().Context()); sc.IsValid() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}

			log.LogAttrs(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}

func isProbe(path string) bool {
	_, ok := probePaths[path]
	return ok
}

// validRequestID accepts caller-supplied IDs of printable ASCII only.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
