// Package pgstore backs the ledger engine with PostgreSQL. It is a read-only
// adapter: reports never write.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
)

// queryTimeout bounds every report query. The engine itself carries no
// timeout logic; it belongs here at the store boundary.
const queryTimeout = 30 * time.Second

// Repository implements ledger.JournalStore and ledger.AccountSource on a
// pgx connection pool. The pool supports concurrent readers, so independent
// report requests never serialize against each other.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the store adapter.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ ledger.JournalStore  = (*Repository)(nil)
	_ ledger.AccountSource = (*Repository)(nil)
)

// ListAccounts returns the full chart of accounts with each account's
// natural side resolved through its type.
func (r *Repository) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	const query = `
SELECT a.id, a.code, a.name, a.parent_id, a.is_leaf, a.account_type_id, t.side
FROM accounts a
JOIN account_types t ON t.id = a.account_type_id
ORDER BY a.code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeFailure("list accounts", err)
	}
	defer rows.Close()
	var accounts []ledger.Account
	for rows.Next() {
		var (
			a    ledger.Account
			side string
		)
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.ParentID, &a.IsLeaf, &a.TypeID, &side); err != nil {
			return nil, storeFailure("scan account", err)
		}
		a.Side, err = parseSide(side)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list accounts", err)
	}
	return accounts, nil
}

// FetchLines returns posted journal lines for the accounts with entry dates
// in [from, to]. A zero from means no lower bound. Order is unspecified.
func (r *Repository) FetchLines(ctx context.Context, accountIDs []int64, from, to time.Time) ([]ledger.LineView, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	const query = `
SELECT l.id, e.id, e.number, e.entry_date, e.description, l.account_id,
       l.debit::text, l.credit::text,
       COALESCE(l.document_number, ''), COALESCE(l.notes, '')
FROM journal_lines l
JOIN journal_entries e ON e.id = l.je_id
WHERE e.status = 'POSTED'
  AND l.account_id = ANY($1)
  AND e.entry_date <= $2
  AND ($3::date IS NULL OR e.entry_date >= $3)`
	var lower any
	if !from.IsZero() {
		lower = from
	}
	rows, err := r.pool.Query(ctx, query, accountIDs, to, lower)
	if err != nil {
		return nil, storeFailure("fetch lines", err)
	}
	defer rows.Close()
	var lines []ledger.LineView
	for rows.Next() {
		var (
			line          ledger.LineView
			debit, credit string
		)
		if err := rows.Scan(&line.LineID, &line.EntryID, &line.EntryNumber, &line.EntryDate,
			&line.Description, &line.AccountID, &debit, &credit, &line.DocumentNumber, &line.Notes); err != nil {
			return nil, storeFailure("scan line", err)
		}
		line.Debit, line.Credit, err = parseAmounts(line.LineID, debit, credit)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("fetch lines", err)
	}
	return lines, nil
}

// parseAmounts converts the stored numeric text into exact decimals and
// rejects malformed values before they enter any arithmetic.
func parseAmounts(lineID int64, debit, credit string) (decimal.Decimal, decimal.Decimal, error) {
	d, err := decimal.NewFromString(debit)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: line %d debit %q", ledger.ErrInvalidArgument, lineID, debit)
	}
	c, err := decimal.NewFromString(credit)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: line %d credit %q", ledger.ErrInvalidArgument, lineID, credit)
	}
	if d.Sign() < 0 || c.Sign() < 0 {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: line %d has negative amount", ledger.ErrInvalidArgument, lineID)
	}
	return d, c, nil
}

func parseSide(side string) (ledger.Side, error) {
	switch side {
	case string(ledger.SideDebit):
		return ledger.SideDebit, nil
	case string(ledger.SideCredit):
		return ledger.SideCredit, nil
	}
	return "", fmt.Errorf("%w: unknown account side %q", ledger.ErrInvalidArgument, side)
}

// storeFailure wraps adapter errors so callers can classify them without
// seeing driver types. Retry policy belongs to the caller, not the engine.
func storeFailure(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (%s)", ledger.ErrStoreUnavailable, op, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", ledger.ErrStoreUnavailable, op, err)
}
