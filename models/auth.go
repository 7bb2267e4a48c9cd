package models

import "time"

// LoginRequest registers a session public key with the auth service. Account
// names the identity-provider anchor the user signs in with.
type LoginRequest struct {
	Account   string `json:"account"`
	PublicKey string `json:"public_key"`
}

// Delegation is issued by the auth service for a session public key. Token is
// a JWT whose subject is the hex principal.
type Delegation struct {
	Token string `json:"delegation"`
}

// KeyMaterialRequest asks the key escrow for key material sealed to the
// transport public key.
type KeyMaterialRequest struct {
	TransportPublicKey string `json:"transport_public_key"`
}

// StoredSession is the persisted form of an authenticated session. It holds
// the identity's session key, never the vault key.
type StoredSession struct {
	Principal   []byte
	SessionSeed []byte
	Delegation  string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// RecordSnapshot is the last ciphertext list fetched for one collection.
type RecordSnapshot struct {
	Records   []RemoteRecord
	FetchedAt time.Time
}
