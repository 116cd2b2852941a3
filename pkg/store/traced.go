package store

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/inkpad/pkg/settings"
)

const tracerName = "inkpad/store"

// tracedStore wraps a Store with OpenTelemetry spans.
type tracedStore struct {
	next   Store
	tracer trace.Tracer
}

// Traced wraps next so every Save and Load runs in a span from the global
// tracer provider.
func Traced(next Store) Store {
	return &tracedStore{next: next, tracer: otel.Tracer(tracerName)}
}

func (t *tracedStore) Save(ctx context.Context, id string, s settings.Snapshot) error {
	ctx, span := t.tracer.Start(ctx, "store.save",
		trace.WithAttributes(
			attribute.String("inkpad.document", id),
			attribute.String("inkpad.tool", string(s.Tool)),
		),
	)
	defer span.End()

	err := t.next.Save(ctx, id, s)
	finish(span, err)
	return err
}

func (t *tracedStore) Load(ctx context.Context, id string) (settings.Snapshot, error) {
	ctx, span := t.tracer.Start(ctx, "store.load",
		trace.WithAttributes(attribute.String("inkpad.document", id)),
	)
	defer span.End()

	s, err := t.next.Load(ctx, id)
	finish(span, err)
	return s, err
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
