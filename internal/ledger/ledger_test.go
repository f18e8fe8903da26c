package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/atlas-ledger/atlas-ledger/testing"
)

// fakeStore is an in-memory JournalStore used across the package tests. The
// aggregator fetches chunks from concurrent goroutines, so the call counter
// is guarded.
type fakeStore struct {
	lines []LineView
	err   error

	mu         sync.Mutex
	fetchCalls int
}

func (f *fakeStore) FetchLines(_ context.Context, accountIDs []int64, from, to time.Time) ([]LineView, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = struct{}{}
	}
	var out []LineView
	for _, line := range f.lines {
		if _, ok := wanted[line.AccountID]; !ok {
			continue
		}
		if !from.IsZero() && line.EntryDate.Before(from) {
			continue
		}
		if line.EntryDate.After(to) {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

type fakeAccounts struct {
	accounts []Account
	err      error
}

func (f *fakeAccounts) ListAccounts(context.Context) ([]Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func ptr(v int64) *int64 { return &v }

// fixtureAccounts is a small two-level chart: assets and liabilities with
// postable leaves, equity with a single capital account.
func fixtureAccounts() []Account {
	return []Account{
		{ID: 1, Code: "1", Name: "Assets", TypeID: 1, Side: SideDebit},
		{ID: 10, Code: "1000", Name: "Cash", ParentID: ptr(1), IsLeaf: true, TypeID: 1, Side: SideDebit},
		{ID: 11, Code: "1100", Name: "Bank", ParentID: ptr(1), IsLeaf: true, TypeID: 1, Side: SideDebit},
		{ID: 2, Code: "2", Name: "Liabilities", TypeID: 2, Side: SideCredit},
		{ID: 20, Code: "2000", Name: "Accounts Payable", ParentID: ptr(2), IsLeaf: true, TypeID: 2, Side: SideCredit},
		{ID: 3, Code: "3", Name: "Equity", TypeID: 3, Side: SideCredit},
		{ID: 30, Code: "3000", Name: "Capital", ParentID: ptr(3), IsLeaf: true, TypeID: 3, Side: SideCredit},
	}
}

// fixtureLines holds balanced entries: capital funding in December, then two
// payable movements in January. Every entry's debits equal its credits.
func fixtureLines() []LineView {
	return []LineView{
		// #1 2024-12-10: opening capital
		{LineID: 1, EntryID: 1, EntryNumber: 1, EntryDate: d(2024, 12, 10), AccountID: 10, Debit: dec("100.00")},
		{LineID: 2, EntryID: 1, EntryNumber: 1, EntryDate: d(2024, 12, 10), AccountID: 30, Credit: dec("100.00")},
		// #2 2025-01-05: purchase on credit, INV-1
		{LineID: 3, EntryID: 2, EntryNumber: 2, EntryDate: d(2025, 1, 5), AccountID: 10, Debit: dec("50.00")},
		{LineID: 4, EntryID: 2, EntryNumber: 2, EntryDate: d(2025, 1, 5), AccountID: 20, Credit: dec("50.00"), DocumentNumber: "INV-1"},
		// #3 2025-01-20: partial settlement of INV-1
		{LineID: 5, EntryID: 3, EntryNumber: 3, EntryDate: d(2025, 1, 20), AccountID: 10, Credit: dec("20.00")},
		{LineID: 6, EntryID: 3, EntryNumber: 3, EntryDate: d(2025, 1, 20), AccountID: 20, Debit: dec("20.00"), DocumentNumber: "INV-1"},
	}
}

// january2025 is the reporting period most fixtures exercise.
func january2025() DateRange {
	return DateRange{Start: d(2025, 1, 1), End: d(2025, 1, 31)}
}
