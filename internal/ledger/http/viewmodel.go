package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
)

// PairVM renders a display pair with fixed two-decimal strings. Serialization
// is string-based so no consumer ever touches floating point.
type PairVM struct {
	Debit  string `json:"debit"`
	Credit string `json:"credit"`
}

func pairVM(p ledger.BalancePair) PairVM {
	return PairVM{Debit: amount(p.Debit), Credit: amount(p.Credit)}
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TrialBalanceRowVM is one trial balance row in API responses.
type TrialBalanceRowVM struct {
	AccountID    int64  `json:"account_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	IsLeaf       bool   `json:"is_leaf"`
	Opening      PairVM `json:"opening"`
	PeriodDebit  string `json:"period_debit"`
	PeriodCredit string `json:"period_credit"`
	Closing      PairVM `json:"closing"`
}

// TrialBalanceVM is the trial balance response payload. The totals sum leaf
// rows only; by the accounting equation the two closing totals agree.
type TrialBalanceVM struct {
	Start             string              `json:"start"`
	End               string              `json:"end"`
	Rows              []TrialBalanceRowVM `json:"rows"`
	LeafClosingDebit  string              `json:"leaf_closing_debit"`
	LeafClosingCredit string              `json:"leaf_closing_credit"`
	TotalPeriodDebit  string              `json:"total_period_debit"`
	TotalPeriodCredit string              `json:"total_period_credit"`
}

// FromTrialBalance converts engine rows into the response payload.
func FromTrialBalance(rows []ledger.TrialBalanceRow, start, end time.Time) TrialBalanceVM {
	vm := TrialBalanceVM{
		Start: start.Format(dateLayout),
		End:   end.Format(dateLayout),
		Rows:  make([]TrialBalanceRowVM, 0, len(rows)),
	}
	leafDebit, leafCredit := decimal.Zero, decimal.Zero
	periodDebit, periodCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		vm.Rows = append(vm.Rows, TrialBalanceRowVM{
			AccountID:    row.AccountID,
			Code:         row.Code,
			Name:         row.Name,
			Level:        row.Level,
			IsLeaf:       row.IsLeaf,
			Opening:      pairVM(row.Opening),
			PeriodDebit:  amount(row.PeriodDebit),
			PeriodCredit: amount(row.PeriodCredit),
			Closing:      pairVM(row.Closing),
		})
		if row.IsLeaf {
			leafDebit = leafDebit.Add(row.Closing.Debit)
			leafCredit = leafCredit.Add(row.Closing.Credit)
			periodDebit = periodDebit.Add(row.PeriodDebit)
			periodCredit = periodCredit.Add(row.PeriodCredit)
		}
	}
	vm.LeafClosingDebit = amount(leafDebit)
	vm.LeafClosingCredit = amount(leafCredit)
	vm.TotalPeriodDebit = amount(periodDebit)
	vm.TotalPeriodCredit = amount(periodCredit)
	return vm
}

// LedgerRowVM is one subsidiary ledger row in API responses.
type LedgerRowVM struct {
	LineID         int64  `json:"line_id"`
	EntryID        int64  `json:"entry_id"`
	EntryNumber    int64  `json:"entry_number"`
	EntryDate      string `json:"entry_date"`
	Description    string `json:"description,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
	Running        PairVM `json:"running"`
	Matched        bool   `json:"matched"`
}

// SubsidiaryLedgerVM is the subsidiary ledger response payload.
type SubsidiaryLedgerVM struct {
	AccountID int64         `json:"account_id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Side      string        `json:"side"`
	Start     string        `json:"start"`
	End       string        `json:"end"`
	View      string        `json:"view"`
	Opening   PairVM        `json:"opening"`
	Rows      []LedgerRowVM `json:"rows"`
	Closing   PairVM        `json:"closing"`
}

// FromSubsidiaryLedger converts the engine feed into the response payload.
func FromSubsidiaryLedger(led ledger.SubsidiaryLedger, start, end time.Time, view ledger.LedgerView) SubsidiaryLedgerVM {
	vm := SubsidiaryLedgerVM{
		AccountID: led.AccountID,
		Code:      led.Code,
		Name:      led.Name,
		Side:      string(led.Side),
		Start:     start.Format(dateLayout),
		End:       end.Format(dateLayout),
		View:      string(view),
		Opening:   pairVM(led.Opening),
		Rows:      make([]LedgerRowVM, 0, len(led.Rows)),
		Closing:   pairVM(led.Closing),
	}
	for _, row := range led.Rows {
		vm.Rows = append(vm.Rows, LedgerRowVM{
			LineID:         row.LineID,
			EntryID:        row.EntryID,
			EntryNumber:    row.EntryNumber,
			EntryDate:      row.EntryDate.Format(dateLayout),
			Description:    row.Description,
			DocumentNumber: row.DocumentNumber,
			Notes:          row.Notes,
			Debit:          amount(row.Debit),
			Credit:         amount(row.Credit),
			Running:        pairVM(row.Running),
			Matched:        row.Matched,
		})
	}
	return vm
}

// AccountBalanceVM is the single-account balance response payload.
type AccountBalanceVM struct {
	AccountID    int64  `json:"account_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	IsLeaf       bool   `json:"is_leaf"`
	Side         string `json:"side"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Opening      PairVM `json:"opening"`
	PeriodDebit  string `json:"period_debit"`
	PeriodCredit string `json:"period_credit"`
	Closing      PairVM `json:"closing"`
}

// FromAccountBalance converts an engine balance into the response payload.
func FromAccountBalance(bal ledger.AccountBalance, start, end time.Time) AccountBalanceVM {
	return AccountBalanceVM{
		AccountID:    bal.AccountID,
		Code:         bal.Code,
		Name:         bal.Name,
		IsLeaf:       bal.IsLeaf,
		Side:         string(bal.Side),
		Start:        start.Format(dateLayout),
		End:          end.Format(dateLayout),
		Opening:      pairVM(bal.Balance.Opening),
		PeriodDebit:  amount(bal.Balance.PeriodDebit),
		PeriodCredit: amount(bal.Balance.PeriodCredit),
		Closing:      pairVM(bal.Balance.Closing),
	}
}
