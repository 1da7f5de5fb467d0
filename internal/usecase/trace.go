package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/riskibarqy/football-stats/internal/usecase"

const (
	attrJob          = attribute.Key("football.job")
	attrTournamentID = attribute.Key("football.tournament_id")
	attrTournaments  = attribute.Key("football.tournament_ids")
	attrMatchID      = attribute.Key("football.match_id")
	attrEntityKind   = attribute.Key("football.entity_kind")
	attrExternalID   = attribute.Key("football.external_id")
)

// startUsecaseSpan only continues an existing trace. Jobs started from the
// CLI or a background pool without a parent stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
