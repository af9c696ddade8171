package telemetry

import (
	"context"
	"testing"

	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))

	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		Insecure:          true,
		SamplingRatio:     1,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	tp.EnableSpanProfiles()
	tp.EnableSpanProfiles()
	assert.True(t, tp.SpanProfilesEnabled())

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler(2).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, DefaultServiceName, serviceName(""))
	assert.Equal(t, "api", serviceName("api"))

	res, err := newResource("api")
	require.NoError(t, err)
	assert.Contains(t, res.String(), "service.name=api")
}
