package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrSessionNotFound is returned by LoadSession when nobody is signed in.
	ErrSessionNotFound = errors.New("local session not found")

	// ErrSnapshotNotFound is returned by LoadSnapshot when a collection has
	// never been fetched for the principal.
	ErrSnapshotNotFound = errors.New("record snapshot not found")

	// ErrCorruptedRow is returned when a stored value cannot be decoded.
	ErrCorruptedRow = errors.New("corrupted local row")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
)
