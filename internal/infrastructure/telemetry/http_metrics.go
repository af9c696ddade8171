package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records server request counts and latency
type HTTPMetrics struct {
	requests *Counter
	duration *Histogram
	inFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the HTTP server instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	m := &HTTPMetrics{}
	var err error

	if m.requests, err = NewCounter(meter, "http.server.requests", "HTTP requests handled", "{request}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "http.server.request.duration",
		"HTTP request latency", "s", HTTPDurationBuckets); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return m, nil
}

// Start marks a request in flight and returns the func that completes it
func (m *HTTPMetrics) Start(ctx context.Context, method string) func(route string, status int) {
	began := time.Now()
	m.inFlight.Add(ctx, 1, metric.WithAttributes(AttrHTTPMethod.String(method)))

	return func(route string, status int) {
		m.inFlight.Add(ctx, -1, metric.WithAttributes(AttrHTTPMethod.String(method)))
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			AttrHTTPMethod.String(method),
			AttrHTTPRoute.String(route),
			AttrHTTPStatusCode.String(strconv.Itoa(status)),
		}
		m.requests.Inc(ctx, attrs...)
		m.duration.RecordDuration(ctx, time.Since(began), attrs...)
	}
}
