package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	serviceName       = "bootmeta"
	traceFlushTimeout = 5 * time.Second
)

// platformKey records the platform name as given or detected
var platformKey = attribute.Key("bootmeta.platform") //nolint:gochecknoglobals

// initTracing installs a global tracer provider exporting over OTLP/gRPC, and
// returns a function that flushes and shuts it down. The platform being
// queried is recorded on the resource.
func initTracing(ctx context.Context, platform string) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("otlptracegrpc.New: %w", err)
	}

	res, err := traceResource(ctx, platform)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		slog.Warn("OTel error", slog.Any("err", err))
	}))

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), traceFlushTimeout)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown trace provider: %w", err)
		}

		return nil
	}

	return shutdown, nil
}

// traceResource describes this process and the instance's cloud platform.
// OTEL_RESOURCE_ATTRIBUTES and OTEL_SERVICE_NAME take precedence.
func traceResource(ctx context.Context, platform string) (*resource.Resource, error) {
	platform = strings.ToLower(platform)

	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(serviceName),
		platformKey.String(platform),
	}, cloudAttributes(platform)...)

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithProcessRuntimeDescription(),
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, fmt.Errorf("resource.New: %w", err)
	}

	return res, nil
}

// cloudAttributes maps a platform name to the cloud.provider and
// cloud.platform resource attributes, where semconv defines them
func cloudAttributes(platform string) []attribute.KeyValue {
	switch platform {
	case "aws", "ec2":
		return []attribute.KeyValue{semconv.CloudProviderAWS, semconv.CloudPlatformAWSEC2}
	case "gcp", "gce":
		return []attribute.KeyValue{semconv.CloudProviderGCP, semconv.CloudPlatformGCPComputeEngine}
	}

	return nil
}
