package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
)

const dateLayout = "2006-01-02"

// trialBalanceRequest carries the query parameters of the trial balance
// endpoints.
type trialBalanceRequest struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02"`
	Level string `validate:"omitempty,numeric"`
}

// subsidiaryLedgerRequest carries the query parameters of the subsidiary
// ledger endpoint.
type subsidiaryLedgerRequest struct {
	AccountID string `validate:"required,numeric"`
	Start     string `validate:"required,datetime=2006-01-02"`
	End       string `validate:"required,datetime=2006-01-02"`
	View      string `validate:"omitempty,oneof=ALL MATCHED UNMATCHED"`
}

// balanceRequest carries the query parameters of the single-account balance
// endpoint.
type balanceRequest struct {
	AccountID string `validate:"required,numeric"`
	Start     string `validate:"required,datetime=2006-01-02"`
	End       string `validate:"required,datetime=2006-01-02"`
}

func parseTrialBalanceRequest(r *http.Request, validate *validator.Validate) (start, end time.Time, opts ledger.TrialBalanceOptions, err error) {
	q := r.URL.Query()
	req := trialBalanceRequest{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Level: q.Get("level"),
	}
	if err = validate.Struct(req); err != nil {
		return start, end, opts, fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}
	start, _ = time.Parse(dateLayout, req.Start)
	end, _ = time.Parse(dateLayout, req.End)
	if req.Level != "" {
		level, convErr := strconv.Atoi(req.Level)
		if convErr != nil || level < 0 {
			return start, end, opts, fmt.Errorf("%w: level %q", ledger.ErrInvalidArgument, req.Level)
		}
		opts.Level = &level
	}
	return start, end, opts, nil
}

func parseSubsidiaryLedgerRequest(r *http.Request, validate *validator.Validate) (accountID int64, start, end time.Time, view ledger.LedgerView, err error) {
	q := r.URL.Query()
	req := subsidiaryLedgerRequest{
		AccountID: q.Get("account_id"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
		View:      q.Get("view"),
	}
	if err = validate.Struct(req); err != nil {
		return 0, start, end, "", fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}
	accountID, convErr := strconv.ParseInt(req.AccountID, 10, 64)
	if convErr != nil {
		return 0, start, end, "", fmt.Errorf("%w: account_id %q", ledger.ErrInvalidArgument, req.AccountID)
	}
	start, _ = time.Parse(dateLayout, req.Start)
	end, _ = time.Parse(dateLayout, req.End)
	view = ledger.LedgerView(req.View)
	if req.View == "" {
		view = ledger.ViewAll
	}
	return accountID, start, end, view, nil
}

func parseBalanceRequest(r *http.Request, validate *validator.Validate) (accountID int64, start, end time.Time, err error) {
	q := r.URL.Query()
	req := balanceRequest{
		AccountID: q.Get("account_id"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
	}
	if err = validate.Struct(req); err != nil {
		return 0, start, end, fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}
	accountID, convErr := strconv.ParseInt(req.AccountID, 10, 64)
	if convErr != nil {
		return 0, start, end, fmt.Errorf("%w: account_id %q", ledger.ErrInvalidArgument, req.AccountID)
	}
	start, _ = time.Parse(dateLayout, req.Start)
	end, _ = time.Parse(dateLayout, req.End)
	return accountID, start, end, nil
}
