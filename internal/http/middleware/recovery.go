package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ludvigisaksen/PA-AI/internal/http/dto"
)

// Recovery turns a handler panic into the JSON 500 body the API uses for
// every internal failure and marks the request span failed.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}

			ctx := c.Request.Context()
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			slog.ErrorContext(ctx, "panic recovered",
				"error", err,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternalError})
		}()
		c.Next()
	}
}
