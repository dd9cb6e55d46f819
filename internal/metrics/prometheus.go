// Package metrics provides Prometheus instrumentation for eventdesk.
package metrics

import (
	"strings"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventdesk"

// Request outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeNetwork     = "network_error"
	OutcomeUnexpected  = "unexpected"
)

// Metrics holds the collectors registered for the client and the watch loop.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Dashboard       *prometheus.GaugeVec
	Connected       prometheus.Gauge
	ProbeDuration   prometheus.Gauge
	LastRefresh     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API calls by method, route and outcome.",
		}, []string{"method", "route", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API call latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		Dashboard: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard",
			Help:      "Dashboard counters from the last refresh.",
		}, []string{"stat"}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_connected",
			Help:      "1 if the last health probe succeeded.",
		}),
		ProbeDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of the last health probe.",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Requests, m.RequestDuration, m.Dashboard,
		m.Connected, m.ProbeDuration, m.LastRefresh,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRequest records one finished API call. status is 0 for network failures.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	route := NormalizeRoute(endpoint)
	m.Requests.WithLabelValues(method, route, Outcome(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetDashboard publishes aggregate statistics.
func (m *Metrics) SetDashboard(s stats.Stats) {
	m.Dashboard.WithLabelValues("events").Set(float64(s.TotalEvents))
	m.Dashboard.WithLabelValues("participants").Set(float64(s.TotalParticipants))
	m.Dashboard.WithLabelValues("available").Set(float64(s.AvailableEvents))
	m.Dashboard.WithLabelValues("organizers").Set(float64(s.TotalOrganizers))
	m.Dashboard.WithLabelValues("upcoming").Set(float64(s.UpcomingEvents))
	m.Dashboard.WithLabelValues("cancelled").Set(float64(s.CancelledEvents))
}

// SetProbe publishes the result of a connectivity probe.
func (m *Metrics) SetProbe(connected bool, elapsed time.Duration) {
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
	m.ProbeDuration.Set(elapsed.Seconds())
}

// MarkRefreshed records the time of a successful refresh.
func (m *Metrics) MarkRefreshed(at time.Time) {
	m.LastRefresh.Set(float64(at.Unix()))
}

// Outcome maps a response status to an outcome label.
func Outcome(status int) string {
	if status >= 200 && status < 300 {
		return OutcomeSuccess
	}
	switch apierr.KindOf(status) {
	case apierr.KindNetwork:
		return OutcomeNetwork
	case apierr.KindClient:
		return OutcomeClientError
	case apierr.KindServer:
		return OutcomeServerError
	default:
		return OutcomeUnexpected
	}
}

// staticSegments are the fixed path components of the API. Anything else is an identifier.
var staticSegments = map[string]bool{
	"evenements":    true,
	"participants":  true,
	"disponibles":   true,
	"recherche":     true,
	"conferences":   true,
	"concerts":      true,
	"annuler":       true,
	"organisateurs": true,
	"test":          true,
	"health":        true,
}

// NormalizeRoute strips the query string and replaces identifiers with {id}.
func NormalizeRoute(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	segments := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, seg := range segments {
		if seg == "" || staticSegments[seg] {
			continue
		}
		segments[i] = "{id}"
	}
	return "/" + strings.Join(segments, "/")
}

