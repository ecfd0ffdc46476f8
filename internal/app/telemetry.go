package app

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

type metrics struct {
	bookingsCreated   metric.Int64Counter
	bookingsRejected  metric.Int64Counter
	paymentsSettled   metric.Int64Counter
	notificationsSent metric.Int64Counter
}

// initTelemetry sets up the OpenTelemetry meter provider and the application
// counters. Without a collector URL the counters still work against the
// default no-op provider.
func (app *application) initTelemetry() (func(context.Context), error) {
	shutdown := func(context.Context) {}

	if app.config.otelCollectorUrl != "" {
		ctx := context.Background()

		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName("sport-booking-api"),
				semconv.ServiceVersion(version),
				semconv.DeploymentEnvironment(app.config.env),
			),
		)
		if err != nil {
			return nil, errors.New("failed to create otel resource")
		}

		metricExporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithEndpoint(app.config.otelCollectorUrl),
		)
		if err != nil {
			return nil, errors.New("failed to create otel metric exporter")
		}

		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		)

		otel.SetMeterProvider(meterProvider)

		if err := redisotel.InstrumentMetrics(app.redis); err != nil {
			app.logger.Error("failed to instrument redis client", "error", err)
		}

		shutdown = func(ctx context.Context) {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				app.logger.Error("failed to shutdown telemetry provider", "error", err)
			}
		}
	}

	meter := otel.Meter("sport-booking-api")

	var err error

	app.metrics.bookingsCreated, err = meter.Int64Counter("bookings.created")
	if err != nil {
		return nil, err
	}

	app.metrics.bookingsRejected, err = meter.Int64Counter("bookings.rejected")
	if err != nil {
		return nil, err
	}

	app.metrics.paymentsSettled, err = meter.Int64Counter("payments.settled")
	if err != nil {
		return nil, err
	}

	app.metrics.notificationsSent, err = meter.Int64Counter("notifications.created")
	if err != nil {
		return nil, err
	}

	return shutdown, nil
}
