package service

import (
	"context"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/models"
)

// KeyDerivationService turns an authenticated identity into the vault key.
type KeyDerivationService interface {
	// DeriveKey runs the escrow protocol once. Every failure wraps
	// ErrDerivation. The caller owns the returned key.
	DeriveKey(ctx context.Context, id identity.Identity) (*crypto.SymmetricKey, error)
}

// ClientAuthService is the identity collaborator as seen by the UI.
type ClientAuthService interface {
	// IsAuthenticated reports whether an unexpired identity is installed.
	IsAuthenticated(ctx context.Context) bool
	// Identity returns the current identity.
	Identity() (identity.Identity, bool)
	// Login signs in as account and calls onSuccess once the identity is
	// installed.
	Login(ctx context.Context, account string, onSuccess func()) error
	// Logout revokes the session remotely, forgets it locally and clears
	// the session state.
	Logout(ctx context.Context) error
	// RestoreSession reinstalls a persisted, unexpired session. It reports
	// whether one was found.
	RestoreSession(ctx context.Context) (bool, error)
}

// VaultSync is the kind-independent control surface of a SyncController.
type VaultSync interface {
	// Collection returns the collection name.
	Collection() string
	// Trigger asks for a sync cycle.
	Trigger()
	// Reset discards the collection's state for the current session.
	Reset()
	// State returns the controller's FSM state.
	State() models.SyncState
	// Subscribe registers a listener for sync events.
	Subscribe(fn func(models.SyncEvent)) (unsubscribe func())
}
