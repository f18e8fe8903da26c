package ledger

import "errors"

var (
	// ErrNotFound indicates an unknown account id.
	ErrNotFound = errors.New("ledger: account not found")
	// ErrInvalidArgument indicates a caller contract violation.
	ErrInvalidArgument = errors.New("ledger: invalid argument")
	// ErrCorruptHierarchy indicates a cycle or dangling parent in the account tree.
	ErrCorruptHierarchy = errors.New("ledger: corrupt account hierarchy")
	// ErrStoreUnavailable indicates the journal store failed; not retried here.
	ErrStoreUnavailable = errors.New("ledger: journal store unavailable")
)
