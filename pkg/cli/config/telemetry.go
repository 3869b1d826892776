package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
	"github.com/urfave/cli/v3"
)

// Telemetry holds tracing configuration
type Telemetry struct {
	Endpoint string
}

// Flags returns CLI flags for Telemetry configuration
func (t *Telemetry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "otel-endpoint",
			Usage:       "OTLP HTTP endpoint receiving traces; traces are discarded if empty",
			Category:    "Telemetry",
			Sources:     cli.EnvVars("SCANTREND_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
			Destination: &t.Endpoint,
		},
	}
}

// Configure installs the tracer provider and returns its shutdown function
func (t *Telemetry) Configure(ctx context.Context, version string) (func(context.Context) error, error) {
	return telemetry.Init(ctx, version, t.Endpoint)
}

// LogValue returns structured log value
func (t Telemetry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", t.Endpoint),
	)
}
