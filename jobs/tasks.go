package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTrialBalanceWarmup precomputes a trial balance into the report cache.
	TaskTrialBalanceWarmup = "report:tb_warmup"
)

// TrialBalanceWarmupPayload selects the period to warm. An empty Period means
// the current month.
type TrialBalanceWarmupPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	Period    string    `json:"period,omitempty"` // "2006-01"
}

// NewTrialBalanceWarmupTask constructs an Asynq task for the warmup job. A
// nil RequestID is kept as-is; the handler assigns a fresh id per run, so a
// cron-registered task gets a distinct id on every firing.
func NewTrialBalanceWarmupTask(payload TrialBalanceWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrialBalanceWarmup, data), nil
}
