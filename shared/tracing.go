// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shared

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/l3montree-dev/sbomguard"

// Tracer returns the tracer every package uses to create spans.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// InitTracer installs a global tracer provider.
// The exporter is selected with OTEL_TRACES_EXPORTER: otlp (http), otlp-grpc, stdout or none.
// Without OTEL_TRACES_EXPORTER an otlp exporter is only used if OTEL_EXPORTER_OTLP_ENDPOINT is set.
// The returned function flushes and stops the provider.
func InitTracer(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	exporterName := strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER")))
	if exporterName == "" && os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		exporterName = "otlp"
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch exporterName {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "otlp", "otlp-http":
		exporter, err = otlptracehttp.New(ctx)
	case "otlp-grpc":
		exporter, err = otlptracegrpc.New(ctx)
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	default:
		return nil, errors.Errorf("unknown traces exporter %q", exporterName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not create traces exporter")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("tracing enabled", "exporter", exporterName)
	return provider.Shutdown, nil
}
