package otel

import (
	"context"
	"log/slog"

	"github.com/corray333/backend-labs/meatshop/internal/jaeger"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const serviceName = "meatshop"

type OtelController struct {
	traceProvider *sdktrace.TracerProvider
}

// MustInitOtel installs a Jaeger-backed tracer provider when tracing.enabled is set.
// Otherwise spans go to the global no-op provider.
func MustInitOtel() *OtelController {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !viper.GetBool("tracing.enabled") {
		slog.Info("Tracing disabled")

		return &OtelController{}
	}

	jaegerExporter := jaeger.MustNewJaeger()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(jaegerExporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)

	return &OtelController{
		traceProvider: tp,
	}
}

func (o *OtelController) Shutdown(ctx context.Context) error {
	if o.traceProvider == nil {
		return nil
	}

	return o.traceProvider.Shutdown(ctx)
}
