package ledger

import (
	"context"
	"time"
)

// AccountBalance is the balance report for a single account. For a summary
// account the figures roll up its descendant leaves.
type AccountBalance struct {
	AccountID int64
	Code      string
	Name      string
	IsLeaf    bool
	Side      Side
	Balance   PeriodBalance
}

// Service exposes the report operations. It loads a fresh chart snapshot per
// request and shares nothing mutable between requests, so independent reports
// run fully in parallel.
type Service struct {
	accounts AccountSource
	store    JournalStore
}

// NewService constructs the report service.
func NewService(accounts AccountSource, store JournalStore) *Service {
	return &Service{accounts: accounts, store: store}
}

// snapshot loads the account list and indexes it into a Chart.
func (s *Service) snapshot(ctx context.Context) (*Chart, *Aggregator, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	chart, err := NewChart(accounts)
	if err != nil {
		return nil, nil, err
	}
	return chart, NewAggregator(s.store), nil
}

// TrialBalance computes the trial balance for the period.
func (s *Service) TrialBalance(ctx context.Context, start, end time.Time, opts TrialBalanceOptions) ([]TrialBalanceRow, error) {
	chart, agg, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.TrialBalance(ctx, chart, DateRange{Start: start, End: end}, opts)
}

// SubsidiaryLedger builds the running-balance feed for one leaf account.
func (s *Service) SubsidiaryLedger(ctx context.Context, accountID int64, start, end time.Time, view LedgerView) (SubsidiaryLedger, error) {
	chart, agg, err := s.snapshot(ctx)
	if err != nil {
		return SubsidiaryLedger{}, err
	}
	return agg.SubsidiaryLedger(ctx, chart, accountID, DateRange{Start: start, End: end}, view)
}

// AccountBalance computes opening, period, and closing figures for one
// account, leaf or summary.
func (s *Service) AccountBalance(ctx context.Context, accountID int64, start, end time.Time) (AccountBalance, error) {
	chart, agg, err := s.snapshot(ctx)
	if err != nil {
		return AccountBalance{}, err
	}
	acc, err := chart.Account(accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	leaves, err := chart.DescendantLeafIDs(accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	balance, err := agg.PeriodBalance(ctx, leaves, acc.Side, DateRange{Start: start, End: end})
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{
		AccountID: acc.ID,
		Code:      acc.Code,
		Name:      acc.Name,
		IsLeaf:    acc.IsLeaf,
		Side:      acc.Side,
		Balance:   balance,
	}, nil
}
