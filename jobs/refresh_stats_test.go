package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/jastipku/jastipku/internal/jobs"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

type fakeRefresher struct {
	single  []string
	allRuns int
	count   int
	err     error
}

func (f *fakeRefresher) UpdatePeriodStatistics(_ context.Context, periodID string) error {
	f.single = append(f.single, periodID)
	return f.err
}

func (f *fakeRefresher) RefreshAll(context.Context) (int, error) {
	f.allRuns++
	return f.count, f.err
}

func TestRefreshStatsTaskPayload(t *testing.T) {
	task, err := NewRefreshStatsTask("  p-1 ")
	require.NoError(t, err)
	assert.Equal(t, TaskRefreshStats, task.Type())
	var payload RefreshStatsPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "p-1", payload.PeriodID)

	task, err = NewRefreshStatsTask("")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(task.Payload()))
}

func TestRefreshStatsJobSinglePeriod(t *testing.T) {
	refresher := &fakeRefresher{}
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := NewRefreshStatsJob(refresher, nil, metrics)

	task, err := NewRefreshStatsTask("p-1")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"p-1"}, refresher.single)
	assert.Zero(t, refresher.allRuns)
}

func TestRefreshStatsJobAllPeriods(t *testing.T) {
	registry := prometheus.NewRegistry()
	refresher := &fakeRefresher{count: 3}
	job := NewRefreshStatsJob(refresher, nil, jobmetrics.NewMetrics(registry))

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskRefreshStats, nil)))
	assert.Equal(t, 1, refresher.allRuns)

	families, err := registry.Gather()
	require.NoError(t, err)
	var refreshed float64
	for _, fam := range families {
		if fam.GetName() == "jastip_period_stats_refreshed_total" {
			refreshed = fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 3.0, refreshed)
}

func TestRefreshStatsJobFailures(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("store down")}
	job := NewRefreshStatsJob(refresher, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewRefreshStatsTask("p-9")
	require.NoError(t, err)
	require.EqualError(t, job.Handle(context.Background(), task), "store down")

	err = job.Handle(context.Background(), asynq.NewTask(TaskRefreshStats, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var nilJob *RefreshStatsJob
	assert.Error(t, nilJob.Handle(context.Background(), task))
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: "u1", Role: shared.RoleAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(nil, nil, rbac.Middleware{}).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, QueueDefault, health.Queue)
}
