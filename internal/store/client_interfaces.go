package store

import (
	"context"

	"github.com/MKhiriev/go-pass-sphere/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// SessionRepository persists the authenticated session so that it survives
// restarts. Only one session is kept at a time.
type SessionRepository interface {
	// SaveSession replaces any stored session with s.
	SaveSession(ctx context.Context, s models.StoredSession) error
	// LoadSession returns the stored session or ErrSessionNotFound.
	LoadSession(ctx context.Context) (models.StoredSession, error)
	// DeleteSession forgets the stored session.
	DeleteSession(ctx context.Context) error
}

// SnapshotRepository keeps the last ciphertext list of every collection.
// principal is the hex principal the records belong to.
type SnapshotRepository interface {
	// SaveSnapshot replaces the snapshot of kind wholesale.
	SaveSnapshot(ctx context.Context, principal, kind string, snapshot models.RecordSnapshot) error
	// LoadSnapshot returns the snapshot of kind or ErrSnapshotNotFound.
	LoadSnapshot(ctx context.Context, principal, kind string) (models.RecordSnapshot, error)
	// DeleteSnapshots removes every snapshot of principal.
	DeleteSnapshots(ctx context.Context, principal string) error
}
