package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/validatorlabs/kms/log"
)

const (
	meterName     = "github.com/validatorlabs/kms"
	namespaceRoot = "kms"
)

var (
	meterProvider *metric.MeterProvider
	meter         api.Meter

	SessionsActiveGauge    *Int64SyncGauge
	SignRequestsCounter    api.Int64Counter
	SessionErrorsCounter   api.Int64Counter
	SessionRespawnsCounter api.Int64Counter
)

type ExporterConfig interface {
	exporterType() string
}

type ExporterNull struct{}

func (e ExporterNull) exporterType() string { return "null" }

type ExporterProm struct {
	Addr string
}

func (e ExporterProm) exporterType() string { return "prometheus" }

func InitializeMetrics(exporterConf ExporterConfig) error {
	var err error

	switch exporterConf := exporterConf.(type) {
	case ExporterNull:
		meterProvider = metric.NewMeterProvider()
	case ExporterProm:
		if exporter, err := NewPrometheusExporter(exporterConf.Addr); err != nil {
			return err
		} else {
			meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		}
	default:
		panic("unexpected exporter type")
	}

	meter = meterProvider.Meter(meterName)

	// create the instrument "kms.sessions_active"
	name := fmt.Sprintf("%s.sessions_active", namespaceRoot)
	if SessionsActiveGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("whether a session with the validator is currently serving"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "kms.sign_requests"
	name = fmt.Sprintf("%s.sign_requests", namespaceRoot)
	if SignRequestsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of signing requests served"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "kms.session_errors"
	name = fmt.Sprintf("%s.session_errors", namespaceRoot)
	if SessionErrorsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of sessions terminated by an error or fault"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "kms.session_respawns"
	name = fmt.Sprintf("%s.session_respawns", namespaceRoot)
	if SessionRespawnsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of session respawn attempts"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	return nil
}

func ShutdownMetrics(ctx context.Context) error {
	if err := meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown the MeterProvider: %v", err)
	}
	return nil
}

func NewPrometheusExporter(addr string) (*prometheus.Exporter, error) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger := log.GetLogger().WithModule("telemetry")
			logger.Fatal("Prometheus exporter server failed", err)
		}
	}()

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create the Prometheus Exporter: %v", err)
	}

	return exporter, nil
}
