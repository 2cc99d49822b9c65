package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		out[string(a.Key)] = a.Value
	}
	return out
}

func TestTraceEndpointStep_Attributes(t *testing.T) {
	recorder := withRecorder(t)

	_, span := TraceEndpointStep(context.Background(), "save_step", map[string]interface{}{
		"string_attr":  "value",
		"int_attr":     42,
		"int64_attr":   int64(123),
		"bool_attr":    true,
		"float64_attr": 3.14,
		"unknown_attr": struct{}{},
	})
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "endpoint.step.save_step", ended[0].Name())

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "endpoint_operation", attrs["step.type"].AsString())
	assert.Equal(t, "value", attrs["string_attr"].AsString())
	assert.Equal(t, int64(42), attrs["int_attr"].AsInt64())
	assert.Equal(t, int64(123), attrs["int64_attr"].AsInt64())
	assert.True(t, attrs["bool_attr"].AsBool())
	assert.Equal(t, "unknown_type", attrs["unknown_attr"].AsString())
}

func TestTraceEndpointStep_Helpers(t *testing.T) {
	recorder := withRecorder(t)
	ctx := context.Background()

	_, s1 := TraceCacheGet(ctx, "countries")
	s1.End()
	_, s2 := TraceExternalService(ctx, "sg_api", "login")
	s2.End()
	_, s3 := TraceBusinessLogic(ctx, "requirement_actions")
	s3.End()

	ended := recorder.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, "endpoint.step.cache_get", ended[0].Name())
	assert.Equal(t, "countries", attrMap(ended[0].Attributes())["cache.key"].AsString())
	assert.Equal(t, "endpoint.step.external_service", ended[1].Name())
	assert.Equal(t, "sg_api", attrMap(ended[1].Attributes())["service.name"].AsString())
	assert.Equal(t, "endpoint.step.business_logic", ended[2].Name())
}

func TestRecordErrorInSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := TraceCacheGet(context.Background(), "session:abc")
	RecordErrorInSpan(span, errors.New("boom"), map[string]interface{}{"cache.hit": false})
	AddSpanAttribute(span, "attempt", 1)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	attrs := attrMap(ended[0].Attributes())
	assert.False(t, attrs["cache.hit"].AsBool())
	assert.Equal(t, int64(1), attrs["attempt"].AsInt64())
	require.Len(t, ended[0].Events(), 1)
}
