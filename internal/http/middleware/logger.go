package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ludvigisaksen/PA-AI/common/logger"
)

// RouteFlows maps a registered route (gin's FullPath) to the flow name its
// handler runs under.
type RouteFlows map[string]string

const unmatchedRoute = "unmatched"

// Logger tags the request context with component and, for routes listed in
// flows, the flow name. Handlers and Recovery log with those fields. After
// the handler returns it writes one line per request.
func Logger(component string, flows RouteFlows) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		fields := logger.LogFields{Component: component}
		if flow, ok := flows[route]; ok {
			fields.Flow = logger.Ptr(flow)
		}
		c.Request = c.Request.WithContext(logger.WithLogFields(c.Request.Context(), fields))

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if c.Request.URL.RawQuery != "" {
			attrs = append(attrs, "query", c.Request.URL.RawQuery)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request rejected", attrs...)
		case route == "/" || route == "/health":
			// Uptime pingers hit these every few seconds.
			slog.DebugContext(ctx, "request", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
