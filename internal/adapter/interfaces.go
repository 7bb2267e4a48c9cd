// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for the remote
// collaborators of the vault client: the authentication service, the key
// escrow and the ciphertext-record service.
//
// The package ships an HTTP/JSON implementation ([NewHTTPAdapters]). Remote
// replies use a variant body, {"ok": value} or {"err": "message"}; the err
// branch and non-2xx statuses are mapped to sentinels that all wrap
// [ErrRemote], so callers can use [errors.Is] without knowing the transport.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// AuthAdapter talks to the authentication service.
type AuthAdapter interface {
	// Login registers sessionPublicKey for account and returns the delegation
	// the service issued for it. The delegation subject is the principal.
	Login(ctx context.Context, account string, sessionPublicKey []byte) (models.Delegation, error)

	// Logout revokes the current delegation. It requires an identity.
	Logout(ctx context.Context) error
}

// KeyEscrowAdapter talks to the key escrow.
type KeyEscrowAdapter interface {
	// RequestKeyMaterial asks for the caller's key material sealed to
	// transportPublicKey. The reply is hex; its layout is owned by
	// crypto.OpenKeyMaterial.
	RequestKeyMaterial(ctx context.Context, transportPublicKey []byte) (string, error)

	// GetVerificationKey returns the hex Ed25519 key the escrow signs key
	// material with.
	GetVerificationKey(ctx context.Context) (string, error)
}

// RecordAdapter offers CRUD over one collection of ciphertext records. Fields
// are always in the collection's field order.
type RecordAdapter interface {
	List(ctx context.Context) ([]models.RemoteRecord, error)
	Create(ctx context.Context, fields []models.Envelope) (uint64, error)
	Update(ctx context.Context, id uint64, fields []models.Envelope) error
	Delete(ctx context.Context, id uint64) error
}

// IdentitySource yields the identity that authenticated requests are signed
// with. session.Session implements it.
type IdentitySource interface {
	Identity() (identity.Identity, bool)
}
