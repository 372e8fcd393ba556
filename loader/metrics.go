package loader

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moffa90/go-aiecdo/cdo"
)

// Metrics holds Prometheus counters for engine activity. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	refills         prometheus.Counter
	commands        *prometheus.CounterVec
	bytesCopied     prometheus.Counter
	zeroRunsSkipped prometheus.Counter
	loads           *prometheus.CounterVec
}

// NewMetrics creates the engine counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aiecdo",
			Subsystem: "loader",
			Name:      "refills_total",
			Help:      "Stream engine cache refills.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aiecdo",
			Subsystem: "loader",
			Name:      "commands_total",
			Help:      "Hardware commands executed, by opcode.",
		}, []string{"opcode"}),
		bytesCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aiecdo",
			Subsystem: "loader",
			Name:      "dma_bytes_total",
			Help:      "Bytes copied to device memory by dma_write.",
		}),
		zeroRunsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aiecdo",
			Subsystem: "loader",
			Name:      "zero_runs_skipped_total",
			Help:      "Zero-run dma_write records skipped.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aiecdo",
			Subsystem: "loader",
			Name:      "loads_total",
			Help:      "Completed loads, by engine and result.",
		}, []string{"engine", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.refills, m.commands, m.bytesCopied, m.zeroRunsSkipped, m.loads)
	}
	return m
}

func (m *Metrics) refill() {
	if m != nil {
		m.refills.Inc()
	}
}

func (m *Metrics) command(op cdo.Opcode) {
	if m != nil {
		m.commands.WithLabelValues(op.String()).Inc()
	}
}

func (m *Metrics) copied(n int) {
	if m != nil {
		m.bytesCopied.Add(float64(n))
	}
}

func (m *Metrics) zeroRunSkipped() {
	if m != nil {
		m.zeroRunsSkipped.Inc()
	}
}

func (m *Metrics) load(engine string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(engine, result).Inc()
}
