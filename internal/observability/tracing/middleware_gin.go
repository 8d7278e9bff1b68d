package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storepulse/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RunIDHeader carries the dashboard run id back to the caller. The
// middleware copies it onto the server span.
const RunIDHeader = "X-Run-Id"

// GinMiddleware instruments inbound HTTP requests. Requests carrying
// dashboard filter parameters get them as span attributes.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("storepulse/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)

		ctx, span := tracer.Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		span.SetAttributes(SafeAttributes(filterAttributes(c)...)...)

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + method + " " + route)
		attrs := []attribute.KeyValue{
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		}
		if runID := c.Writer.Header().Get(RunIDHeader); runID != "" {
			attrs = append(attrs, attribute.String("dashboard.run_id", runID))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		}
	}
}

// filterAttributes records the raw dashboard filter. Values are truncated
// to 32 bytes.
func filterAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, key := range []string{"start", "end", "top_n"} {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			if len(v) > 32 {
				v = v[:32]
			}
			attrs = append(attrs, attribute.String("dashboard."+key, v))
		}
	}
	if categories := c.QueryArray("category"); len(categories) > 0 {
		count := 0
		for _, raw := range categories {
			for _, part := range strings.Split(raw, ",") {
				if strings.TrimSpace(part) != "" {
					count++
				}
			}
		}
		attrs = append(attrs, attribute.Int("dashboard.category_count", count))
	}
	return attrs
}
