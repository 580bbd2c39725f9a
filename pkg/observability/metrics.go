package observability

import (
	"time"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by a zone's hooks.
type Metrics struct {
	Recomputes     *prometheus.CounterVec
	AsyncStarted   *prometheus.CounterVec
	AsyncAbandoned *prometheus.CounterVec
	AsyncDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		Recomputes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recomputes_total",
				Help:      "Total number of control recomputes by resulting status",
			},
			[]string{"kind", "status"},
		),
		AsyncStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "async_validations_started_total",
				Help:      "Total number of async validation runs started",
			},
			[]string{"kind"},
		),
		AsyncAbandoned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "async_validations_abandoned_total",
				Help:      "Total number of async validation runs superseded, disabled or disposed",
			},
			[]string{"kind"},
		),
		AsyncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "async_validation_duration_seconds",
				Help:      "Duration of applied async validation runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.Recomputes, m.AsyncStarted, m.AsyncAbandoned, m.AsyncDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns zone hooks recording into m.
func (m *Metrics) Hooks() form.Hooks {
	return form.Hooks{
		OnRecompute: func(c form.Control, s form.Status) {
			m.Recomputes.WithLabelValues(Kind(c), string(s)).Inc()
		},
		OnAsyncStart: func(c form.Control) {
			m.AsyncStarted.WithLabelValues(Kind(c)).Inc()
		},
		OnAsyncApplied: func(c form.Control, errs form.ValidationErrors, elapsed time.Duration) {
			outcome := "valid"
			if len(errs) > 0 {
				outcome = "invalid"
			}
			m.AsyncDuration.WithLabelValues(Kind(c), outcome).Observe(elapsed.Seconds())
		},
		OnAsyncAbandoned: func(c form.Control) {
			m.AsyncAbandoned.WithLabelValues(Kind(c)).Inc()
		},
	}
}

// Kind names the kind of c; paths are not used as labels.
func Kind(c form.Control) string {
	switch c.(type) {
	case *form.Field:
		return "field"
	case *form.Group:
		return "group"
	case *form.Array:
		return "array"
	default:
		return "unknown"
	}
}
