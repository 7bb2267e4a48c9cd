package models

import "time"

// SyncState is a sync controller's state.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncPending
	SyncFetching
	SyncReconciled
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncPending:
		return "pending"
	case SyncFetching:
		return "fetching"
	case SyncReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// SyncOperation names what a notification is about.
type SyncOperation string

const (
	OperationSync   SyncOperation = "sync"
	OperationCreate SyncOperation = "create"
	OperationUpdate SyncOperation = "update"
	OperationDelete SyncOperation = "delete"
)

// SyncPhase is the lifecycle point a notification reports.
type SyncPhase string

const (
	PhaseStarted   SyncPhase = "started"
	PhaseSucceeded SyncPhase = "succeeded"
	PhaseFailed    SyncPhase = "failed"
)

// SyncEvent is delivered to sync controller subscribers.
type SyncEvent struct {
	Collection string
	Operation  SyncOperation
	Phase      SyncPhase
	// Reason is set for PhaseFailed.
	Reason error
	// Generation is the cache generation after the event.
	Generation uint64
	// Warnings is the number of records skipped for decrypt failures.
	Warnings int
	// Stale reports that the cache was filled from the local snapshot.
	Stale bool
	At    time.Time
}

// Mutation is a create, update or delete request for one record.
type Mutation[T Record] struct {
	Operation SyncOperation
	Record    T
	// ID is used by deletes.
	ID uint64
}

// CreateRecord requests creation of r. Its id is ignored.
func CreateRecord[T Record](r T) Mutation[T] {
	return Mutation[T]{Operation: OperationCreate, Record: r}
}

// UpdateRecord requests replacement of the fields of r, identified by its id.
func UpdateRecord[T Record](r T) Mutation[T] {
	return Mutation[T]{Operation: OperationUpdate, Record: r, ID: r.RecordID()}
}

// DeleteRecord requests removal of record id.
func DeleteRecord[T Record](id uint64) Mutation[T] {
	return Mutation[T]{Operation: OperationDelete, ID: id}
}
