package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerView selects which rows of a subsidiary ledger are returned.
type LedgerView string

const (
	ViewAll       LedgerView = "ALL"
	ViewMatched   LedgerView = "MATCHED"
	ViewUnmatched LedgerView = "UNMATCHED"
)

// Valid reports whether the view is one of the known values.
func (v LedgerView) Valid() bool {
	switch v {
	case ViewAll, ViewMatched, ViewUnmatched:
		return true
	}
	return false
}

// LedgerRow is one journal line in the subsidiary ledger feed, carrying the
// running balance after its own inclusion.
type LedgerRow struct {
	LineID         int64
	EntryID        int64
	EntryNumber    int64
	EntryDate      time.Time
	Description    string
	DocumentNumber string
	Notes          string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningNet     decimal.Decimal
	Running        BalancePair
	Matched        bool
}

// SubsidiaryLedger is the chronological feed for one leaf account.
type SubsidiaryLedger struct {
	AccountID int64
	Code      string
	Name      string
	Side      Side
	Opening   BalancePair
	Rows      []LedgerRow
	Closing   BalancePair
}

// SubsidiaryLedger builds the running-balance transaction feed for a single
// leaf account over the period. Non-leaf accounts are rejected: only leaves
// carry postings. The Matched/Unmatched views filter rows by document-group
// classification computed over the full period's lines, so a filtered view
// still classifies against every line sharing the document number.
func (a *Aggregator) SubsidiaryLedger(ctx context.Context, chart *Chart, accountID int64, period DateRange, view LedgerView) (SubsidiaryLedger, error) {
	if err := period.Validate(); err != nil {
		return SubsidiaryLedger{}, err
	}
	if !view.Valid() {
		return SubsidiaryLedger{}, fmt.Errorf("%w: unknown ledger view %q", ErrInvalidArgument, view)
	}
	acc, err := chart.Account(accountID)
	if err != nil {
		return SubsidiaryLedger{}, err
	}
	if !acc.IsLeaf {
		return SubsidiaryLedger{}, fmt.Errorf("%w: account %s is not postable", ErrInvalidArgument, acc.Code)
	}

	openingNet, err := a.CumulativeNet(ctx, []int64{acc.ID}, period.OpeningCutoff())
	if err != nil {
		return SubsidiaryLedger{}, err
	}
	lines, err := a.fetchLines(ctx, []int64{acc.ID}, period.Start, period.End)
	if err != nil {
		return SubsidiaryLedger{}, err
	}
	// The tie-break order keeps running balances reproducible across calls.
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].EntryDate.Equal(lines[j].EntryDate) {
			return lines[i].EntryDate.Before(lines[j].EntryDate)
		}
		if lines[i].EntryNumber != lines[j].EntryNumber {
			return lines[i].EntryNumber < lines[j].EntryNumber
		}
		return lines[i].LineID < lines[j].LineID
	})

	matched := classifyDocuments(lines)
	running := openingNet
	rows := make([]LedgerRow, 0, len(lines))
	for _, line := range lines {
		running = running.Add(line.Debit).Sub(line.Credit)
		isMatched := matched[groupKey(line)]
		if view == ViewMatched && !isMatched {
			continue
		}
		if view == ViewUnmatched && isMatched {
			continue
		}
		rows = append(rows, LedgerRow{
			LineID:         line.LineID,
			EntryID:        line.EntryID,
			EntryNumber:    line.EntryNumber,
			EntryDate:      line.EntryDate,
			Description:    line.Description,
			DocumentNumber: line.DocumentNumber,
			Notes:          line.Notes,
			Debit:          line.Debit,
			Credit:         line.Credit,
			RunningNet:     running,
			Running:        DisplayPair(running, acc.Side),
			Matched:        isMatched,
		})
	}

	closingNet := running
	return SubsidiaryLedger{
		AccountID: acc.ID,
		Code:      acc.Code,
		Name:      acc.Name,
		Side:      acc.Side,
		Opening:   DisplayPair(openingNet, acc.Side),
		Rows:      rows,
		Closing:   DisplayPair(closingNet, acc.Side),
	}, nil
}

// groupKey buckets lines by document number. Lines without a document number
// never reconcile against each other, so each forms its own group.
func groupKey(line LineView) string {
	if line.DocumentNumber == "" {
		return "line:" + strconv.FormatInt(line.LineID, 10)
	}
	return "doc:" + line.DocumentNumber
}

// classifyDocuments marks a document group matched when its debits and
// credits offset to within MatchEpsilon.
func classifyDocuments(lines []LineView) map[string]bool {
	nets := make(map[string]decimal.Decimal)
	for _, line := range lines {
		key := groupKey(line)
		nets[key] = nets[key].Add(line.Debit).Sub(line.Credit)
	}
	matched := make(map[string]bool, len(nets))
	for key, net := range nets {
		matched[key] = net.Abs().LessThan(MatchEpsilon)
	}
	return matched
}
