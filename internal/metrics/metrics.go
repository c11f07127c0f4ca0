package metrics

import (
	"sync"

	"github.com/lakpay/mpgs-hosted-checkout/internal/telemetry"
)

var (
	// Checkout counters
	SessionsCreated  *telemetry.Counter
	GatewayCalls     *telemetry.Counter
	GatewayFailures  *telemetry.Counter
	OrderLookups     *telemetry.Counter
	IndicatorChecks  *telemetry.Counter
	IndicatorMatches *telemetry.Counter

	// Histograms
	GatewayCallDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all checkout metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	SessionsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "checkout_sessions_created_total",
		Description: "Total number of checkout sessions created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GatewayCalls, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "gateway_calls_total",
		Description: "Total number of gateway API calls",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GatewayFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "gateway_failures_total",
		Description: "Total number of failed gateway API calls",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrderLookups, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "order_lookups_total",
		Description: "Total number of order result lookups",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	IndicatorChecks, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "indicator_checks_total",
		Description: "Total number of success indicator verifications",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	IndicatorMatches, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "indicator_matches_total",
		Description: "Total number of success indicator verifications that matched",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GatewayCallDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "gateway_call_duration_seconds",
		Description: "Duration of gateway API calls",
		Unit:        "s",
	})
	if err != nil {
		return err
	}

	return nil
}
