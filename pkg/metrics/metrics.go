package metrics

import (
	"runtime"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/webhookx-io/hookshot/config/modules"
	"go.uber.org/zap"
)

type Metrics struct {
	Enabled  bool
	Interval time.Duration

	// runtime metrics

	RuntimeGoroutine    metrics.Gauge
	RuntimeAlloc        metrics.Gauge
	RuntimeSys          metrics.Gauge
	RuntimeHeapObjects  metrics.Gauge
	RuntimePauseTotalNs metrics.Gauge
	RuntimeGC           metrics.Gauge

	// delivery metrics

	AttemptTotalCounter              metrics.Counter
	AttemptFailedCounter             metrics.Counter
	AttemptResponseDurationHistogram metrics.Histogram
	DeliveryOutcomeCounter           metrics.Counter

	// capture metrics

	CaptureCounter     metrics.Counter
	MenuRebuildCounter metrics.Counter
}

func (m *Metrics) Stop() error {
	if m.Enabled {
		return StopOpentelemetry()
	}
	return nil
}

// New returns metrics that discard every observation unless an export is
// configured.
func New(cfg modules.MetricsConfig) (*Metrics, error) {
	m := newDiscard()
	if len(cfg.Exports) > 0 {
		m.Enabled = true
		m.Interval = time.Second * time.Duration(cfg.PushInterval)
		err := SetupOpentelemetry(cfg.Attributes, cfg.Opentelemetry, m)
		if err != nil {
			return nil, err
		}
		zap.S().Infof("enabled metric exports: %v", cfg.Exports)
	}
	return m, nil
}

func newDiscard() *Metrics {
	return &Metrics{
		RuntimeGoroutine:    discard.NewGauge(),
		RuntimeAlloc:        discard.NewGauge(),
		RuntimeSys:          discard.NewGauge(),
		RuntimeHeapObjects:  discard.NewGauge(),
		RuntimePauseTotalNs: discard.NewGauge(),
		RuntimeGC:           discard.NewGauge(),

		AttemptTotalCounter:              discard.NewCounter(),
		AttemptFailedCounter:             discard.NewCounter(),
		AttemptResponseDurationHistogram: discard.NewHistogram(),
		DeliveryOutcomeCounter:           discard.NewCounter(),

		CaptureCounter:     discard.NewCounter(),
		MenuRebuildCounter: discard.NewCounter(),
	}
}

// NewNop returns metrics that record nothing.
func NewNop() *Metrics {
	return newDiscard()
}

func (m *Metrics) CollectRuntimeStats() {
	m.RuntimeGoroutine.Set(float64(runtime.NumGoroutine()))

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.RuntimeAlloc.Set(float64(stats.Alloc))
	m.RuntimeSys.Set(float64(stats.Sys))
	m.RuntimeHeapObjects.Set(float64(stats.HeapObjects))
	m.RuntimePauseTotalNs.Set(float64(stats.PauseTotalNs))
	m.RuntimeGC.Set(float64(stats.NumGC))
}
