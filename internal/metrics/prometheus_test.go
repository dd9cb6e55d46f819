package metrics

import (
	"testing"
	"time"

	"github.com/eventdesk/eventdesk/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := newTestMetrics(t)

	t.Run("counts by normalized route and outcome", func(t *testing.T) {
		m.ObserveRequest("GET", "/evenements/42", 200, 50*time.Millisecond)
		m.ObserveRequest("GET", "/evenements/43", 200, 150*time.Millisecond)
		m.ObserveRequest("GET", "/evenements/44", 404, 10*time.Millisecond)

		if val := getCounterValue(t, m.Requests, "GET", "/evenements/{id}", OutcomeSuccess); val != 2 {
			t.Errorf("expected 2 successes, got %f", val)
		}
		if val := getCounterValue(t, m.Requests, "GET", "/evenements/{id}", OutcomeClientError); val != 1 {
			t.Errorf("expected 1 client error, got %f", val)
		}
	})

	t.Run("observes duration", func(t *testing.T) {
		count, sum := getHistogramValues(t, m.RequestDuration, "GET", "/evenements/{id}")
		if count != 3 {
			t.Errorf("expected count 3, got %d", count)
		}
		if sum < 0.209 || sum > 0.211 {
			t.Errorf("expected sum 0.21, got %f", sum)
		}
	})

	t.Run("network failures", func(t *testing.T) {
		m.ObserveRequest("POST", "/participants", 0, 10*time.Second)

		if val := getCounterValue(t, m.Requests, "POST", "/participants", OutcomeNetwork); val != 1 {
			t.Errorf("expected 1 network error, got %f", val)
		}
	})
}

func TestMetrics_SetDashboard(t *testing.T) {
	m := newTestMetrics(t)

	m.SetDashboard(stats.Stats{
		TotalEvents:       7,
		TotalParticipants: 20,
		AvailableEvents:   4,
		TotalOrganizers:   3,
		UpcomingEvents:    5,
		CancelledEvents:   1,
	})

	want := map[string]float64{
		"events":       7,
		"participants": 20,
		"available":    4,
		"organizers":   3,
		"upcoming":     5,
		"cancelled":    1,
	}
	for stat, v := range want {
		if got := getGaugeValue(t, m.Dashboard, stat); got != v {
			t.Errorf("dashboard{stat=%q} = %f, want %f", stat, got, v)
		}
	}

	m.SetDashboard(stats.Stats{})
	if got := getGaugeValue(t, m.Dashboard, "events"); got != 0 {
		t.Errorf("expected gauge reset to 0, got %f", got)
	}
}

func TestMetrics_SetProbe(t *testing.T) {
	m := newTestMetrics(t)

	m.SetProbe(true, 250*time.Millisecond)
	if got := readGauge(t, m.Connected); got != 1 {
		t.Errorf("connected = %f, want 1", got)
	}
	if got := readGauge(t, m.ProbeDuration); got != 0.25 {
		t.Errorf("probe duration = %f, want 0.25", got)
	}

	m.SetProbe(false, time.Second)
	if got := readGauge(t, m.Connected); got != 0 {
		t.Errorf("connected = %f, want 0", got)
	}
}

func TestMetrics_MarkRefreshed(t *testing.T) {
	m := newTestMetrics(t)
	at := time.Unix(1_760_000_000, 0)

	m.MarkRefreshed(at)
	if got := readGauge(t, m.LastRefresh); got != 1_760_000_000 {
		t.Errorf("last refresh = %f, want %d", got, at.Unix())
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, OutcomeNetwork},
		{200, OutcomeSuccess},
		{204, OutcomeSuccess},
		{302, OutcomeUnexpected},
		{400, OutcomeClientError},
		{409, OutcomeClientError},
		{500, OutcomeServerError},
		{503, OutcomeServerError},
	}

	for _, tt := range tests {
		if got := Outcome(tt.status); got != tt.want {
			t.Errorf("Outcome(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"/evenements", "/evenements"},
		{"/evenements/disponibles", "/evenements/disponibles"},
		{"/evenements/recherche?lieu=Paris", "/evenements/recherche"},
		{"/evenements/3f2b8c1e-9d4a-4b7e-8f21-6a0c5d9e7b11", "/evenements/{id}"},
		{"/evenements/12/annuler", "/evenements/{id}/annuler"},
		{"/evenements/12/participants/7", "/evenements/{id}/participants/{id}"},
		{"/participants/organisateurs", "/participants/organisateurs"},
		{"/test/health", "/test/health"},
		{"participants/9/", "/participants/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := NormalizeRoute(tt.endpoint); got != tt.want {
				t.Errorf("NormalizeRoute(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}

// Helper functions for extracting Prometheus metric values.

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := counter.WithLabelValues(labels...).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func getGaugeValue(t *testing.T, gauge *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()
	return readGauge(t, gauge.WithLabelValues(labels...))
}

func readGauge(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := gauge.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func getHistogramValues(t *testing.T, hist *prometheus.HistogramVec, labels ...string) (uint64, float64) {
	t.Helper()
	var m dto.Metric
	if err := hist.WithLabelValues(labels...).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}
