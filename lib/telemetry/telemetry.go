package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
	"timesales-scraper/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type state struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

var current state

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it will be used as the exporter config.
// a missing file leaves the no-op global providers in place.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	config, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, config)
}

func Setup(ctx context.Context, serviceName string, config config) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider, err := newTraceProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMetricProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)

	current = state{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
	}
	return nil
}

func Shutdown(ctx context.Context) error {
	var errlist []error
	if current.tracerProvider != nil {
		errlist = append(errlist, current.tracerProvider.Shutdown(ctx))
	}
	if current.meterProvider != nil {
		errlist = append(errlist, current.meterProvider.Shutdown(ctx))
	}
	current = state{}
	return errors.Join(errlist...)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once per service name
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		slog.Warn("telemetry setup skipped", "service", serviceName, "err", err)
	}
	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			slog.Warn("telemetry shutdown failed", "err", err)
		}
	}
}
