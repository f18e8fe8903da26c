package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account in the trial balance. Summary accounts carry
// the roll-up of their descendant leaves.
type TrialBalanceRow struct {
	AccountID    int64
	Code         string
	Name         string
	Level        int
	IsLeaf       bool
	Opening      BalancePair
	PeriodDebit  decimal.Decimal
	PeriodCredit decimal.Decimal
	Closing      BalancePair
}

// TrialBalanceOptions narrows trial balance output. A nil Level includes
// every hierarchy depth.
type TrialBalanceOptions struct {
	Level *int
}

// leafActivity is the per-leaf reduction the roll-up is assembled from.
type leafActivity struct {
	openingNet   decimal.Decimal
	periodDebit  decimal.Decimal
	periodCredit decimal.Decimal
}

// TrialBalance produces one row per account with nonzero opening, period, or
// closing amounts, ordered by account code. Lines are fetched once for the
// whole leaf set and reduced per leaf; each row is then the sum over the
// account's descendant leaves, which is arithmetically identical to running
// the aggregator per account but costs two store queries total.
func (a *Aggregator) TrialBalance(ctx context.Context, chart *Chart, period DateRange, opts TrialBalanceOptions) ([]TrialBalanceRow, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	var leafIDs []int64
	for _, acc := range chart.Ordered() {
		if acc.IsLeaf {
			leafIDs = append(leafIDs, acc.ID)
		}
	}
	activity := make(map[int64]*leafActivity, len(leafIDs))
	if len(leafIDs) > 0 {
		opening, err := a.fetchLines(ctx, leafIDs, time.Time{}, period.OpeningCutoff())
		if err != nil {
			return nil, err
		}
		for _, line := range opening {
			act := ensureActivity(activity, line.AccountID)
			act.openingNet = act.openingNet.Add(line.Debit).Sub(line.Credit)
		}
		inPeriod, err := a.fetchLines(ctx, leafIDs, period.Start, period.End)
		if err != nil {
			return nil, err
		}
		for _, line := range inPeriod {
			act := ensureActivity(activity, line.AccountID)
			act.periodDebit = act.periodDebit.Add(line.Debit)
			act.periodCredit = act.periodCredit.Add(line.Credit)
		}
	}

	var rows []TrialBalanceRow
	for _, acc := range chart.Ordered() {
		level, err := chart.Depth(acc.ID)
		if err != nil {
			return nil, err
		}
		if opts.Level != nil && level != *opts.Level {
			continue
		}
		leaves, err := chart.DescendantLeafIDs(acc.ID)
		if err != nil {
			return nil, err
		}
		openingNet, periodDebit, periodCredit := decimal.Zero, decimal.Zero, decimal.Zero
		for _, leaf := range leaves {
			act, ok := activity[leaf]
			if !ok {
				continue
			}
			openingNet = openingNet.Add(act.openingNet)
			periodDebit = periodDebit.Add(act.periodDebit)
			periodCredit = periodCredit.Add(act.periodCredit)
		}
		if openingNet.IsZero() && periodDebit.IsZero() && periodCredit.IsZero() {
			continue
		}
		closingNet := openingNet.Add(periodDebit).Sub(periodCredit)
		rows = append(rows, TrialBalanceRow{
			AccountID:    acc.ID,
			Code:         acc.Code,
			Name:         acc.Name,
			Level:        level,
			IsLeaf:       acc.IsLeaf,
			Opening:      DisplayPair(openingNet, acc.Side),
			PeriodDebit:  periodDebit,
			PeriodCredit: periodCredit,
			Closing:      DisplayPair(closingNet, acc.Side),
		})
	}
	return rows, nil
}

func ensureActivity(m map[int64]*leafActivity, accountID int64) *leafActivity {
	act, ok := m[accountID]
	if !ok {
		act = &leafActivity{
			openingNet:   decimal.Zero,
			periodDebit:  decimal.Zero,
			periodCredit: decimal.Zero,
		}
		m[accountID] = act
	}
	return act
}
