package judge

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spboyer/panelscore/internal/models"
)

// Metrics holds the prometheus collectors for judge calls. A nil *Metrics
// records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	verdicts *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the judge collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelscore_judge_calls_total",
				Help: "Total number of judge invocations",
			},
			[]string{"judge", "outcome"},
		),
		verdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelscore_judge_verdicts_total",
				Help: "Judge verdicts by value",
			},
			[]string{"judge", "verdict"},
		),
		tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelscore_judge_tokens_total",
				Help: "Tokens consumed by judge invocations",
			},
			[]string{"judge"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panelscore_judge_latency_seconds",
				Help:    "Judge invocation latency",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"judge"},
		),
	}
}

func (m *Metrics) observeVerdict(judgeName string, v models.Verdict) {
	if m == nil {
		return
	}
	m.verdicts.With(prometheus.Labels{"judge": judgeName, "verdict": string(v)}).Inc()
}

// Instrument records call counts, latency and token usage for inv.
func Instrument(inv Invoker, judgeName string, m *Metrics) Invoker {
	if m == nil {
		return inv
	}
	return InvokerFunc(func(ctx context.Context, prompt string) (*Response, error) {
		start := time.Now()
		resp, err := inv.Invoke(ctx, prompt)
		m.latency.WithLabelValues(judgeName).Observe(time.Since(start).Seconds())

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.calls.WithLabelValues(judgeName, outcome).Inc()
		if resp != nil && resp.Tokens > 0 {
			m.tokens.WithLabelValues(judgeName).Add(float64(resp.Tokens))
		}
		return resp, err
	})
}
