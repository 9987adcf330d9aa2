package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/jastipku/jastipku/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRefreshStats recomputes the statistics of one period, or of every
	// period when the payload carries no id.
	TaskRefreshStats = "periods:refresh_stats"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// RefreshStatsPayload scopes a statistics refresh.
type RefreshStatsPayload struct {
	PeriodID string `json:"periodId,omitempty"`
}

// NewRefreshStatsTask constructs an Asynq task. An empty periodID refreshes
// every period.
func NewRefreshStatsTask(periodID string) (*asynq.Task, error) {
	body, err := json.Marshal(RefreshStatsPayload{PeriodID: strings.TrimSpace(periodID)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefreshStats, body, asynq.Queue(QueueDefault)), nil
}
