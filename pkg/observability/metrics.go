package observability

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// EngineMetrics holds the counters of the session/progression engine
type EngineMetrics struct {
	Logins          metric.Int64Counter
	Logouts         metric.Int64Counter
	LicenseFailures metric.Int64Counter
	Activations     metric.Int64Counter
	SimulatorTicks  metric.Int64Counter
	LiveFeedTicks   metric.Int64Counter
}

// NewEngineMetrics registers the engine instruments on the given meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	var err error

	if m.Logins, err = meter.Int64Counter("engine_logins_total",
		metric.WithDescription("Completed logins")); err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}
	if m.Logouts, err = meter.Int64Counter("engine_logouts_total",
		metric.WithDescription("Completed logouts")); err != nil {
		return nil, fmt.Errorf("failed to create logouts counter: %w", err)
	}
	if m.LicenseFailures, err = meter.Int64Counter("engine_license_failures_total",
		metric.WithDescription("Rejected mining-license submissions")); err != nil {
		return nil, fmt.Errorf("failed to create license failures counter: %w", err)
	}
	if m.Activations, err = meter.Int64Counter("engine_activations_total",
		metric.WithDescription("Confirmed deposit activations and upgrades")); err != nil {
		return nil, fmt.Errorf("failed to create activations counter: %w", err)
	}
	if m.SimulatorTicks, err = meter.Int64Counter("engine_simulator_ticks_total",
		metric.WithDescription("Progression simulator ticks")); err != nil {
		return nil, fmt.Errorf("failed to create simulator ticks counter: %w", err)
	}
	if m.LiveFeedTicks, err = meter.Int64Counter("engine_live_feed_ticks_total",
		metric.WithDescription("Live visualization feed ticks")); err != nil {
		return nil, fmt.Errorf("failed to create live feed ticks counter: %w", err)
	}

	return m, nil
}

// NopEngineMetrics returns metrics bound to a no-op meter, for tests
func NopEngineMetrics() *EngineMetrics {
	m, _ := NewEngineMetrics(noop.NewMeterProvider().Meter("engine"))
	return m
}
