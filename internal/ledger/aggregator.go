package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// fetchChunkSize bounds the account-id set passed to a single store query.
	fetchChunkSize = 500
	// fetchParallelism bounds concurrent store queries per aggregation.
	fetchParallelism = 4
)

// PeriodBalance is the opening/period/closing decomposition for one account
// scope over one reporting period.
type PeriodBalance struct {
	Opening      BalancePair
	PeriodDebit  decimal.Decimal
	PeriodCredit decimal.Decimal
	Closing      BalancePair
}

// Aggregator reduces journal lines into balances. It holds no mutable state;
// a single instance serves concurrent report requests.
type Aggregator struct {
	store JournalStore
}

// NewAggregator wires the aggregator to its journal store.
func NewAggregator(store JournalStore) *Aggregator {
	return &Aggregator{store: store}
}

// CumulativeNet sums debit minus credit over all lines dated on or before
// asOf for the given accounts. An empty account set is a zero balance.
func (a *Aggregator) CumulativeNet(ctx context.Context, accountIDs []int64, asOf time.Time) (decimal.Decimal, error) {
	if len(accountIDs) == 0 {
		return decimal.Zero, nil
	}
	lines, err := a.fetchLines(ctx, accountIDs, time.Time{}, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	net := decimal.Zero
	for _, line := range lines {
		net = net.Add(line.Debit).Sub(line.Credit)
	}
	return net, nil
}

// PeriodMovement sums gross debit and credit over lines dated within the
// range. The pair is returned unnetted so callers can show gross activity.
func (a *Aggregator) PeriodMovement(ctx context.Context, accountIDs []int64, period DateRange) (debit, credit decimal.Decimal, err error) {
	if err := period.Validate(); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if len(accountIDs) == 0 {
		return decimal.Zero, decimal.Zero, nil
	}
	lines, err := a.fetchLines(ctx, accountIDs, period.Start, period.End)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit, nil
}

// PeriodBalance computes opening, period movement, and closing for the
// account scope. Opening is cumulative-to-date at the day before the period
// starts; closing is derived from opening net plus period movement, so
//
//	closing.Net() == opening.Net() + periodDebit - periodCredit
//
// holds exactly for every result.
func (a *Aggregator) PeriodBalance(ctx context.Context, accountIDs []int64, side Side, period DateRange) (PeriodBalance, error) {
	if err := period.Validate(); err != nil {
		return PeriodBalance{}, err
	}
	openingNet, err := a.CumulativeNet(ctx, accountIDs, period.OpeningCutoff())
	if err != nil {
		return PeriodBalance{}, err
	}
	periodDebit, periodCredit, err := a.PeriodMovement(ctx, accountIDs, period)
	if err != nil {
		return PeriodBalance{}, err
	}
	closingNet := openingNet.Add(periodDebit).Sub(periodCredit)
	return PeriodBalance{
		Opening:      DisplayPair(openingNet, side),
		PeriodDebit:  periodDebit,
		PeriodCredit: periodCredit,
		Closing:      DisplayPair(closingNet, side),
	}, nil
}

// fetchLines batches large account sets into bounded chunks and fetches them
// concurrently. Summation downstream is exact decimal arithmetic, so result
// order across chunks does not matter; the merged slice is still sorted by
// line id for reproducibility.
func (a *Aggregator) fetchLines(ctx context.Context, accountIDs []int64, from, to time.Time) ([]LineView, error) {
	if len(accountIDs) <= fetchChunkSize {
		return a.store.FetchLines(ctx, accountIDs, from, to)
	}
	var chunks [][]int64
	for start := 0; start < len(accountIDs); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(accountIDs) {
			end = len(accountIDs)
		}
		chunks = append(chunks, accountIDs[start:end])
	}
	results := make([][]LineView, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			lines, err := a.store.FetchLines(gctx, chunk, from, to)
			if err != nil {
				return err
			}
			results[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []LineView
	for _, lines := range results {
		merged = append(merged, lines...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].LineID < merged[j].LineID })
	return merged, nil
}
