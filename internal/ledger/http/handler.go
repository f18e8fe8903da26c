// Package http exposes the report engine over a JSON API. It is the only
// caller-facing surface; serialization choices live here, not in the engine.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
	"github.com/atlas-ledger/atlas-ledger/internal/observability"
	"github.com/atlas-ledger/atlas-ledger/internal/platform/httpx"
	"github.com/atlas-ledger/atlas-ledger/internal/report"
)

// ReportService is the subset of the engine the handler drives.
type ReportService interface {
	TrialBalance(ctx context.Context, start, end time.Time, opts ledger.TrialBalanceOptions) ([]ledger.TrialBalanceRow, error)
	SubsidiaryLedger(ctx context.Context, accountID int64, start, end time.Time, view ledger.LedgerView) (ledger.SubsidiaryLedger, error)
	AccountBalance(ctx context.Context, accountID int64, start, end time.Time) (ledger.AccountBalance, error)
}

// Handler wires the report endpoints.
type Handler struct {
	logger    *slog.Logger
	service   ReportService
	cache     *report.Cache
	metrics   *observability.Metrics
	validate  *validator.Validate
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the report handler. Cache and metrics may be nil;
// both degrade gracefully.
func NewHandler(logger *slog.Logger, service ReportService, cache *report.Cache, metrics *observability.Metrics) *Handler {
	limiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{
		logger:    logger,
		service:   service,
		cache:     cache,
		metrics:   metrics,
		validate:  validator.New(),
		rateLimit: limiter,
	}
}

// MountRoutes registers the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.handleTrialBalance)
	r.Get("/reports/subsidiary-ledger", h.handleSubsidiaryLedger)
	r.Get("/reports/balance", h.handleAccountBalance)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/reports/trial-balance/export.csv", h.handleTrialBalanceCSV)
	})
	r.Post("/reports/cache/bump", h.handleCacheBump)
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	start, end, opts, err := parseTrialBalanceRequest(r, h.validate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	vm, err := h.buildTrialBalance(r.Context(), start, end, opts)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

// buildTrialBalance computes the trial balance behind the cache and the
// singleflight group, so identical concurrent requests share one run.
func (h *Handler) buildTrialBalance(ctx context.Context, start, end time.Time, opts ledger.TrialBalanceOptions) (TrialBalanceVM, error) {
	began := time.Now()
	var vm TrialBalanceVM
	key, err := h.cache.BuildKey(ctx, TrialBalanceKeyParts(start, end, opts)...)
	if err != nil {
		return TrialBalanceVM{}, err
	}
	built, err := singleflightBuild(ctx, key, func(ctx context.Context) (interface{}, error) {
		var cached TrialBalanceVM
		err := h.cache.FetchJSON(ctx, key, &cached, func(ctx context.Context) (interface{}, error) {
			rows, err := h.service.TrialBalance(ctx, start, end, opts)
			if err != nil {
				return nil, err
			}
			return FromTrialBalance(rows, start, end), nil
		})
		return cached, err
	})
	h.metrics.ObserveReport("trial_balance", err, time.Since(began))
	if err != nil {
		return TrialBalanceVM{}, err
	}
	vm = built.(TrialBalanceVM)
	return vm, nil
}

func (h *Handler) handleSubsidiaryLedger(w http.ResponseWriter, r *http.Request) {
	accountID, start, end, view, err := parseSubsidiaryLedgerRequest(r, h.validate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	began := time.Now()
	led, err := h.service.SubsidiaryLedger(r.Context(), accountID, start, end, view)
	h.metrics.ObserveReport("subsidiary_ledger", err, time.Since(began))
	if err != nil {
		h.logger.Error("subsidiary ledger", slog.Int64("account_id", accountID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, FromSubsidiaryLedger(led, start, end, view))
}

func (h *Handler) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID, start, end, err := parseBalanceRequest(r, h.validate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	began := time.Now()
	bal, err := h.service.AccountBalance(r.Context(), accountID, start, end)
	h.metrics.ObserveReport("account_balance", err, time.Since(began))
	if err != nil {
		h.logger.Error("account balance", slog.Int64("account_id", accountID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, FromAccountBalance(bal, start, end))
}

func (h *Handler) handleTrialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	start, end, opts, err := parseTrialBalanceRequest(r, h.validate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	vm, err := h.buildTrialBalance(r.Context(), start, end, opts)
	if err != nil {
		h.logger.Error("trial balance export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("trial-balance_%s_%s.csv", vm.Start, vm.End)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := writeTrialBalanceCSV(w, vm); err != nil {
		h.logger.Error("stream trial balance csv", slog.Any("error", err))
	}
}

// handleCacheBump invalidates cached reports. The master-data component
// calls this when accounts or journals change.
func (h *Handler) handleCacheBump(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Bump(r.Context()); err != nil {
		h.logger.Error("cache bump", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Cache Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

// TrialBalanceKeyParts is the shared cache key scheme for trial balance
// payloads; the warmup job uses the same parts so warmed entries are hits.
func TrialBalanceKeyParts(start, end time.Time, opts ledger.TrialBalanceOptions) []string {
	level := "all"
	if opts.Level != nil {
		level = fmt.Sprintf("l%d", *opts.Level)
	}
	return []string{"report", "tb", start.Format(dateLayout), end.Format(dateLayout), level}
}
