package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/riskibarqy/football-stats/internal/interfaces/httpapi"

// startHandlerSpan opens a child of the otelhttp server span. Requests
// filtered out by RequestTracing have no parent and keep a noop span.
func startHandlerSpan(r *http.Request, handler string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	return otel.Tracer(tracerName).Start(ctx, "httpapi.Handler."+handler, trace.WithAttributes(attrs...))
}

// markSpanError flags the active span when the response is a server-side
// failure. Client errors stay unset.
func markSpanError(ctx context.Context, status int, err error) {
	if status < http.StatusInternalServerError || err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, http.StatusText(status))
}
