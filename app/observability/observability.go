// Package observability bundles the logger, tracer and metrics shared by modules.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "tipster"

// Config selects logger and metrics behaviour.
type Config struct {
	Environment    string
	LogLevel       string
	MetricsEnabled bool
	Output         io.Writer
}

// Observability holds the shared telemetry handles.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  metrics.OperationMetrics
}

// Init builds the JSON logger and, when enabled, a prometheus registry.
func Init(cfg Config) (*Observability, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})).
		With(slog.String("service", ServiceName), slog.String("env", cfg.Environment))

	obs := &Observability{Logger: logger, Metrics: metrics.NoOp{}}
	if !cfg.MetricsEnabled {
		return obs, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewPrometheusMetrics(reg, ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	obs.Registry = reg
	obs.Metrics = m
	return obs, nil
}

// Tracer returns a named tracer from the global provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return otel.Tracer(ServiceName + "/" + name)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
