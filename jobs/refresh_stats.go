package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/jastipku/jastipku/internal/jobs"
)

// StatsRefresher recomputes stored period statistics.
type StatsRefresher interface {
	UpdatePeriodStatistics(ctx context.Context, periodID string) error
	RefreshAll(ctx context.Context) (int, error)
}

// RefreshStatsJob resyncs period rollups with their items.
type RefreshStatsJob struct {
	Service StatsRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRefreshStatsJob constructs the job handler.
func NewRefreshStatsJob(service StatsRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefreshStatsJob {
	return &RefreshStatsJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the refresh.
func (j *RefreshStatsJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("refresh stats: service not configured")
	}
	var payload RefreshStatsPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskRefreshStats)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	if payload.PeriodID != "" {
		if err := j.Service.UpdatePeriodStatistics(ctx, payload.PeriodID); err != nil {
			resultErr = err
			j.log().Error("refresh period statistics", slog.String("period", payload.PeriodID), slog.Any("error", err))
			return resultErr
		}
		j.metrics().AddRefreshed(1)
		j.log().Info("refreshed period statistics", slog.String("period", payload.PeriodID), slog.Duration("duration", time.Since(start)))
		return resultErr
	}

	refreshed, err := j.Service.RefreshAll(ctx)
	j.metrics().AddRefreshed(refreshed)
	if err != nil {
		resultErr = err
		j.log().Error("refresh all period statistics", slog.Int("refreshed", refreshed), slog.Any("error", err))
		return resultErr
	}
	j.log().Info("refreshed all period statistics", slog.Int("periods", refreshed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *RefreshStatsJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RefreshStatsJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRefreshStats))
	}
	return slog.Default().With(slog.String("job", TaskRefreshStats))
}

func (j *RefreshStatsJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *RefreshStatsJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
