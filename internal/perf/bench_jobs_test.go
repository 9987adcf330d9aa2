package perf

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/jastipku/jastipku/internal/jobs"
	"github.com/jastipku/jastipku/jobs"
)

type failingRefresher struct{}

func (failingRefresher) UpdatePeriodStatistics(context.Context, string) error {
	return errors.New("timeout")
}

func (failingRefresher) RefreshAll(context.Context) (int, error) {
	return 0, errors.New("timeout")
}

func TestRefreshJobThroughputAndReliability(t *testing.T) {
	s := newStack(t)
	ids := s.seed(t, 8, 30)

	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := jobs.NewRefreshStatsJob(s.aggregator, nil, metrics)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if err := job.Handle(ctx, asynq.NewTask(jobs.TaskRefreshStats, nil)); err != nil {
			t.Fatalf("refresh all: %v", err)
		}
	}
	for _, id := range ids {
		task, err := jobs.NewRefreshStatsTask(id)
		if err != nil {
			t.Fatalf("task: %v", err)
		}
		if err := job.Handle(ctx, task); err != nil {
			t.Fatalf("refresh %s: %v", id, err)
		}
	}

	broken := jobs.NewRefreshStatsJob(failingRefresher{}, nil, metrics)
	if err := broken.Handle(ctx, asynq.NewTask(jobs.TaskRefreshStats, nil)); err == nil {
		t.Fatal("expected error to propagate")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "jastip_jobs_total", map[string]string{"job": jobs.TaskRefreshStats, "status": "success"})
	failure := metricValue(t, families, "jastip_jobs_total", map[string]string{"job": jobs.TaskRefreshStats, "status": "failure"})
	if success != float64(20+len(ids)) || failure != 1 {
		t.Fatalf("unexpected run counts: success=%f failure=%f", success, failure)
	}

	refreshed := metricValue(t, families, "jastip_period_stats_refreshed_total", nil)
	if refreshed != float64(20*len(ids)+len(ids)) {
		t.Fatalf("unexpected refreshed count: %f", refreshed)
	}

	mean := histogramMean(t, families, "jastip_job_duration_seconds", map[string]string{"job": jobs.TaskRefreshStats})
	if mean > 0.5 {
		t.Fatalf("refresh duration above budget: %f", mean)
	}
}

func BenchmarkRefreshAll(b *testing.B) {
	s := newStack(b)
	s.seed(b, 10, 40)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.aggregator.RefreshAll(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, val := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = lp.GetValue() == val
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
