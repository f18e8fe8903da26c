package ledger

import "github.com/shopspring/decimal"

// Side is the natural balance side of an account type.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// MatchEpsilon is the tolerance used when classifying document groups as
// matched: one smallest currency unit. It absorbs rounding on imported
// documents, nothing more.
var MatchEpsilon = decimal.New(1, -2)

// BalancePair is a balance re-expressed for display: at most one of the two
// fields is nonzero and both are nonnegative.
type BalancePair struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Net returns the signed net value (debit minus credit) of the pair.
func (p BalancePair) Net() decimal.Decimal {
	return p.Debit.Sub(p.Credit)
}

// IsZero reports whether both sides are zero.
func (p BalancePair) IsZero() bool {
	return p.Debit.IsZero() && p.Credit.IsZero()
}

// DisplayPair converts a signed net value (debit minus credit) into a
// (debit, credit) display pair according to the account's natural side.
// Every sign-convention decision in the engine goes through here.
func DisplayPair(net decimal.Decimal, side Side) BalancePair {
	if net.IsZero() {
		return BalancePair{}
	}
	if side == SideCredit {
		// Credit-normal accounts carry their balance as credit minus debit.
		if inverted := net.Neg(); inverted.Sign() > 0 {
			return BalancePair{Credit: inverted}
		}
		return BalancePair{Debit: net}
	}
	if net.Sign() > 0 {
		return BalancePair{Debit: net}
	}
	return BalancePair{Credit: net.Neg()}
}
