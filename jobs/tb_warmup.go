package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
	ledgerhttp "github.com/atlas-ledger/atlas-ledger/internal/ledger/http"
	"github.com/atlas-ledger/atlas-ledger/internal/report"
)

// TrialBalanceWarmupJob pre-populates the report cache with the trial
// balance for a period, so the first interactive request of the day is a
// cache hit.
type TrialBalanceWarmupJob struct {
	Service ledgerhttp.ReportService
	Cache   *report.Cache
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewTrialBalanceWarmupJob wires dependencies for the warmup handler.
func NewTrialBalanceWarmupJob(service ledgerhttp.ReportService, cache *report.Cache, logger *slog.Logger) *TrialBalanceWarmupJob {
	return &TrialBalanceWarmupJob{
		Service: service,
		Cache:   cache,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the clock for deterministic tests.
func (j *TrialBalanceWarmupJob) WithClock(clock func() time.Time) {
	if clock != nil {
		j.clock = clock
	}
}

// Handle processes trial balance warmup tasks.
func (j *TrialBalanceWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("tb warmup: handler not configured")
	}
	var payload TrialBalanceWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RequestID == uuid.Nil {
		payload.RequestID = uuid.New()
	}

	start, end, err := j.resolvePeriod(payload.Period)
	if err != nil {
		j.Logger.Error("tb warmup period", slog.String("period", payload.Period), slog.Any("error", err))
		return asynq.SkipRetry
	}

	logger := j.Logger.With(
		slog.String("request_id", payload.RequestID.String()),
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")),
	)
	logger.Info("starting trial balance warmup")

	began := j.clock()
	opts := ledger.TrialBalanceOptions{}
	key, err := j.Cache.BuildKey(ctx, ledgerhttp.TrialBalanceKeyParts(start, end, opts)...)
	if err != nil {
		logger.Error("tb warmup cache key", slog.Any("error", err))
		return err
	}
	var vm ledgerhttp.TrialBalanceVM
	err = j.Cache.FetchJSON(ctx, key, &vm, func(ctx context.Context) (interface{}, error) {
		rows, err := j.Service.TrialBalance(ctx, start, end, opts)
		if err != nil {
			return nil, err
		}
		return ledgerhttp.FromTrialBalance(rows, start, end), nil
	})
	if err != nil {
		logger.Error("tb warmup compute", slog.Any("error", err))
		return err
	}

	logger.Info("completed trial balance warmup",
		slog.Int("rows", len(vm.Rows)),
		slog.Duration("duration", time.Since(began)))
	return nil
}

// resolvePeriod expands a "2006-01" period code (or the current month when
// empty) into its first and last day.
func (j *TrialBalanceWarmupJob) resolvePeriod(period string) (time.Time, time.Time, error) {
	var month time.Time
	if period == "" {
		now := j.clock()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01", period)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		month = parsed
	}
	return month, month.AddDate(0, 1, -1), nil
}
