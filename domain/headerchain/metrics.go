package headerchain

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cashlabs/cashspv/domain/consensus/model"
	"github.com/cashlabs/cashspv/domain/consensus/ruleerrors"
)

// Metrics are the prometheus metrics of a HeaderChain. A nil *Metrics
// reports nothing.
type Metrics struct {
	acceptedHeaders prometheus.Counter
	rejectedHeaders *prometheus.CounterVec
	storeErrors     prometheus.Counter
	tipHeight       prometheus.Gauge
	tipTimestamp    prometheus.Gauge
	tipBits         prometheus.Gauge
}

// NewMetrics creates the header chain metrics and registers them with
// registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		acceptedHeaders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headerchain_accepted_headers_total",
			Help: "Number of headers accepted into the chain.",
		}),
		rejectedHeaders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "headerchain_rejected_headers_total",
			Help: "Number of headers rejected for violating a consensus rule.",
		}, []string{"reason"}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headerchain_store_errors_total",
			Help: "Number of headers that could not be processed because of a store failure.",
		}),
		tipHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "headerchain_tip_height",
			Help: "Height of the chain tip.",
		}),
		tipTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "headerchain_tip_timestamp",
			Help: "Header timestamp of the chain tip.",
		}),
		tipBits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "headerchain_tip_bits",
			Help: "Compact difficulty bits of the chain tip.",
		}),
	}

	collectors := []prometheus.Collector{
		metrics.acceptedHeaders,
		metrics.rejectedHeaders,
		metrics.storeErrors,
		metrics.tipHeight,
		metrics.tipTimestamp,
		metrics.tipBits,
	}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return metrics, nil
}

func (m *Metrics) accept(*AcceptedHeader) {
	if m == nil {
		return
	}
	m.acceptedHeaders.Inc()
}

func (m *Metrics) reject(err error) {
	if m == nil {
		return
	}
	var ruleErr ruleerrors.RuleError
	if !errors.As(err, &ruleErr) {
		m.storeErrors.Inc()
		return
	}
	m.rejectedHeaders.WithLabelValues(ruleErr.Message()).Inc()
}

func (m *Metrics) setTip(tip *model.StoredHeader) {
	if m == nil {
		return
	}
	m.tipHeight.Set(float64(tip.Height))
	m.tipTimestamp.Set(float64(tip.Timestamp()))
	m.tipBits.Set(float64(tip.Bits()))
}
