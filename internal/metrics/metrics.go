// Package metrics exposes Prometheus counters for dispatch runs and deliveries.
package metrics

import (
	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the dispatcher's collectors. Construct one per registry.
type Collector struct {
	RunsTotal       *prometheus.CounterVec
	DeliveriesTotal *prometheus.CounterVec
	EventsTotal     *prometheus.CounterVec
	Unaudited       prometheus.Counter
	RunDuration     prometheus.Histogram
}

// New builds the collectors and registers them with r.
func New(r prometheus.Registerer) *Collector {
	c := &Collector{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifier_dispatch_runs_total",
				Help: "Dispatch runs by result",
			},
			[]string{"result"}, // completed|nothing_to_do|cancelled|failed
		),
		DeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifier_deliveries_total",
				Help: "Delivery attempts by status",
			},
			[]string{"status"}, // success|error
		),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifier_events_total",
				Help: "Events considered by dispatch runs, by outcome",
			},
			[]string{"outcome"}, // processed|skipped|failed
		),
		Unaudited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_unaudited_deliveries_total",
			Help: "Delivery attempts whose log row could not be written",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifier_dispatch_run_duration_seconds",
			Help:    "Wall time of completed dispatch runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	if r != nil {
		r.MustRegister(c.RunsTotal, c.DeliveriesTotal, c.EventsTotal, c.Unaudited, c.RunDuration)
	}
	return c
}

// ObserveDelivery counts one delivery attempt.
func (c *Collector) ObserveDelivery(status models.DeliveryStatus) {
	c.DeliveriesTotal.WithLabelValues(string(status)).Inc()
}

// ObserveRun counts a finished run. A nil summary with a non-nil err is a failed run.
func (c *Collector) ObserveRun(summary *models.DispatchSummary, err error) {
	if err != nil || summary == nil {
		c.RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	switch {
	case summary.NothingToDo:
		c.RunsTotal.WithLabelValues("nothing_to_do").Inc()
	case summary.Cancelled:
		c.RunsTotal.WithLabelValues("cancelled").Inc()
	default:
		c.RunsTotal.WithLabelValues("completed").Inc()
	}
	c.EventsTotal.WithLabelValues("processed").Add(float64(summary.EventsProcessed))
	c.EventsTotal.WithLabelValues("skipped").Add(float64(summary.EventsSkipped))
	c.EventsTotal.WithLabelValues("failed").Add(float64(summary.EventsFailed))
	c.Unaudited.Add(float64(summary.Unaudited))
	if !summary.FinishedAt.IsZero() {
		c.RunDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}
}
