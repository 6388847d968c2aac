// Package metrics defines Prometheus metrics for frommer-watch. Metrics live
// on a dedicated registry so a single-shot run can push exactly its own
// series to a Pushgateway without Go runtime noise.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "frommer"

// Fetch outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Registry holds every watcher metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Site metrics.
var (
	FetchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Total marketplace page fetches by outcome.",
	}, []string{"site", "outcome"})

	ParseErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_errors_total",
		Help:      "Total parser failures per site.",
	}, []string{"site"})

	ListingsParsedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_parsed_total",
		Help:      "Total candidate listings extracted per site.",
	}, []string{"site"})

	MatchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_total",
		Help:      "Total new keyword matches per site.",
	}, []string{"site"})
)

// Run metrics.
var (
	RunsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total check cycles executed.",
	})

	RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of check cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	LastRunFound = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_found",
		Help:      "Number of new matching listings found by the last run.",
	})

	LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total summary messages delivered.",
	})

	NotificationFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})

	NotificationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of notification send attempts in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Push sends the current contents of Registry to a Pushgateway, replacing
// the previous values for the job and grouping.
func Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(Registry)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}

	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}

	return nil
}
