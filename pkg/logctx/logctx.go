package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ctxFields are the primitive context values promoted to log fields when no
// request-scoped logger was attached.
var ctxFields = map[string]string{
	"traceID": "trace_id",
	"user_id": "user_id",
}

// FromGin returns the request-scoped logger attached by the logging
// middleware, falling back to context-based enrichment of base.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get("logger"); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger carried in ctx if one was set; otherwise base is
// enriched with whatever identity values the context holds.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value("logger").(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	var fields []interface{}
	for key, field := range ctxFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, field, v)
		}
	}
	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
