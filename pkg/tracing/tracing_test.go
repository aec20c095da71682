package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installInMemory(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := Install("test-service", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return exporter
}

func TestStartSpan_ChildSharesTraceID(t *testing.T) {
	exporter := installInMemory(t)

	ctx, root := StartSpan(context.Background(), "order.Create")
	_, child := StartSpan(ctx, "order.ReserveStock")
	child.End()
	root.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "order.ReserveStock", spans[0].Name)
	assert.Equal(t, "order.Create", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestEnd_RecordsError(t *testing.T) {
	exporter := installInMemory(t)

	_, span := StartSpan(context.Background(), "book.Delete")
	End(span, errors.New("has dependents"))

	_, ok := StartSpan(context.Background(), "book.Get")
	End(ok, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 1)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}

func TestExtractIDs(t *testing.T) {
	installInMemory(t)

	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))

	ctx, span := StartSpan(context.Background(), "ws.Subscribe")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
	assert.Len(t, ExtractSpanID(ctx), 16)
	assert.Equal(t, span.SpanContext().TraceID().String(), ExtractTraceID(ctx))
}
