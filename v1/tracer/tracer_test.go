package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &Tracer{tracer: tp}, rec
}

func TestStartSpan_RecordsAttributesAndErrors(t *testing.T) {
	tr, rec := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "delete-product")
	tr.SetAttributes(span, map[string]interface{}{
		"namespace": "sell-products",
		"count":     2,
		"verified":  true,
		"other":     []string{"x"},
	})
	tr.RecordErrorOnSpan(span, errors.New("still present"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "delete-product", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.String("namespace", "sell-products"))
	assert.Contains(t, s.Attributes(), attribute.Int("count", 2))
	assert.Contains(t, s.Attributes(), attribute.String("other", "[x]"))
	require.Len(t, s.Events(), 1)
}

func TestRecordErrorOnSpan_NilIsNoop(t *testing.T) {
	tr, rec := newRecordingTracer()
	_, span := tr.StartSpan(context.Background(), "ok")
	tr.RecordErrorOnSpan(span, nil)
	span.End()
	assert.Equal(t, codes.Unset, rec.Ended()[0].Status().Code)
}

func TestNewClient_LocalOnly(t *testing.T) {
	tr, err := NewClient(DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, tr.Shutdown(context.Background()))
}
