package keeper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/keeperio/promisekeeper/pkg/keeper"

// startTaskSpan opens a span covering one task execution. With no tracer
// provider installed this is a no-op span.
func (k *PromiseKeeper) startTaskSpan(ctx context.Context, p *Promise) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "keeper.task",
		trace.WithAttributes(
			attribute.String("promise.id", p.ID()),
		),
	)
}

func endTaskSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
