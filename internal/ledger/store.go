package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineView is the read model of one posted journal line, joined with the
// metadata of its owning entry. Debit and credit are both always present;
// either or both may be zero.
type LineView struct {
	LineID         int64
	EntryID        int64
	EntryNumber    int64
	EntryDate      time.Time
	Description    string
	AccountID      int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	DocumentNumber string
	Notes          string
}

// JournalStore is the read-only boundary to wherever journal entries live.
// Implementations must be safe for concurrent use by independent report
// requests and must enforce their own query timeouts.
type JournalStore interface {
	// FetchLines returns every posted line for the given accounts with
	// entry_date in [from, to]. A zero from means no lower bound. Order is
	// unspecified; callers re-sort as needed.
	FetchLines(ctx context.Context, accountIDs []int64, from, to time.Time) ([]LineView, error)
}

// AccountSource supplies the full account list from which a Chart snapshot is
// built, once per report request.
type AccountSource interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

// DateRange is a closed reporting period.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejects missing or inverted ranges.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidArgument)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: range end %s before start %s", ErrInvalidArgument,
			r.End.Format("2006-01-02"), r.Start.Format("2006-01-02"))
	}
	return nil
}

// OpeningCutoff returns the as-of date for the opening balance: the day
// before the period starts.
func (r DateRange) OpeningCutoff() time.Time {
	return r.Start.AddDate(0, 0, -1)
}
