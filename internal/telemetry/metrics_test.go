package telemetry

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"stakeMetrics/internal/model"
)

// gauge reads the current business gauge for name from the default registry.
func gauge(t *testing.T, name string) (float64, bool) {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "stake_metrics_business_metric_value" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "metric_name" && lp.GetValue() == name {
					return m.GetGauge().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func TestObserveMetrics(t *testing.T) {
	m := model.ProcessedMetrics{Ready: true}
	m.NdolApr = model.Defined(big.NewInt(1250))
	m.NdolBalance = model.Defined(new(big.Int).Mul(big.NewInt(3), pow10(18)))
	m.TotalStakedUsd = model.Defined(new(big.Int).Mul(big.NewInt(42), pow10(30)))

	ObserveMetrics(m)

	cases := map[string]float64{"ndolApr": 12.5, "ndolBalance": 3, "totalStakedUsd": 42}
	for name, want := range cases {
		got, ok := gauge(t, name)
		if !ok || got != want {
			t.Fatalf("%s: expected %v, got %v (present=%v)", name, want, got, ok)
		}
	}

	m.NdolApr = model.Undefined()
	ObserveMetrics(m)
	if _, ok := gauge(t, "ndolApr"); ok {
		t.Fatalf("expected undefined field to be removed")
	}
}

func TestObserveMetricsEmptyRecord(t *testing.T) {
	ObserveMetrics(model.ProcessedMetrics{})
}
