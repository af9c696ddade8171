// Package telemetry wires OpenTelemetry tracing, metrics and log export, plus
// Pyroscope profiling, for the fitcoach backend.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// DefaultServiceName is used when the configuration leaves it empty
const DefaultServiceName = "fitcoach-backend"

// ServiceVersion is reported on every exported signal. Set at link time.
var ServiceVersion = "dev"

func serviceName(name string) string {
	if name == "" {
		return DefaultServiceName
	}
	return name
}

func newResource(name string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName(name)),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
