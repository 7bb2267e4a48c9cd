// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package identity holds the authenticated identity handle consumed by the
// client: a principal issued by the auth service plus a session Ed25519 key
// used to sign remote calls.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalMaxSize is the largest accepted principal, in bytes.
const PrincipalMaxSize = 29

var (
	ErrInvalidPrincipal  = errors.New("invalid principal")
	ErrInvalidDelegation = errors.New("invalid delegation")
	ErrInvalidSessionKey = errors.New("invalid session key")
)

// Principal is the opaque, stable identifier of an authenticated user.
type Principal []byte

// String returns the lowercase hex form used on the wire.
func (p Principal) String() string {
	return crypto.EncodeHex(p)
}

// ParsePrincipal decodes the hex wire form of a principal.
func ParsePrincipal(s string) (Principal, error) {
	raw, err := crypto.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	if len(raw) == 0 || len(raw) > PrincipalMaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPrincipal, len(raw))
	}
	return Principal(raw), nil
}

// Identity is the authenticated handle the rest of the client borrows. It is
// never mutated after creation.
type Identity interface {
	// Principal returns the caller's principal.
	Principal() Principal
	// Sign signs msg with the session key.
	Sign(msg []byte) ([]byte, error)
	// Delegation returns the bearer token issued for the session key.
	Delegation() string
	// PublicKey returns the session public key.
	PublicKey() ed25519.PublicKey
}

// SessionIdentity is the concrete Identity built from a login.
type SessionIdentity struct {
	principal  Principal
	key        ed25519.PrivateKey
	delegation string
	expiresAt  time.Time
}

// NewSessionKey generates the Ed25519 seed for a new session.
func NewSessionKey() (seed []byte, pub ed25519.PublicKey, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating session key: %w", err)
	}
	return priv.Seed(), pub, nil
}

// New builds a SessionIdentity from a session seed and the delegation token
// the auth service issued for it. The principal and expiry come from the
// token.
func New(seed []byte, delegation string) (*SessionIdentity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes", ErrInvalidSessionKey, len(seed))
	}

	principal, expiresAt, err := ParseDelegation(delegation)
	if err != nil {
		return nil, err
	}

	return &SessionIdentity{
		principal:  principal,
		key:        ed25519.NewKeyFromSeed(seed),
		delegation: delegation,
		expiresAt:  expiresAt,
	}, nil
}

// FromStored rebuilds a persisted session.
func FromStored(s models.StoredSession) (*SessionIdentity, error) {
	id, err := New(s.SessionSeed, s.Delegation)
	if err != nil {
		return nil, err
	}
	if !Principal(s.Principal).Equal(id.principal) {
		return nil, fmt.Errorf("%w: stored principal does not match delegation", ErrInvalidDelegation)
	}
	return id, nil
}

// Stored returns the persistable form of the session.
func (s *SessionIdentity) Stored(now time.Time) models.StoredSession {
	return models.StoredSession{
		Principal:   append([]byte(nil), s.principal...),
		SessionSeed: s.key.Seed(),
		Delegation:  s.delegation,
		ExpiresAt:   s.expiresAt,
		CreatedAt:   now,
	}
}

func (s *SessionIdentity) Principal() Principal { return s.principal }

func (s *SessionIdentity) Delegation() string { return s.delegation }

func (s *SessionIdentity) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *SessionIdentity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.key, msg), nil
}

// ExpiresAt returns the delegation expiry, or the zero time if it has none.
func (s *SessionIdentity) ExpiresAt() time.Time { return s.expiresAt }

// Expired reports whether the delegation has expired at now.
func (s *SessionIdentity) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// Equal compares two principals.
func (p Principal) Equal(other Principal) bool {
	return string(p) == string(other)
}

// ParseDelegation reads the principal (subject) and expiry from a delegation
// token. The token signature is checked by the services that receive it, not
// by the client.
func ParseDelegation(token string) (Principal, time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDelegation, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("%w: unexpected claims", ErrInvalidDelegation)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, time.Time{}, fmt.Errorf("%w: missing subject", ErrInvalidDelegation)
	}

	principal, err := ParsePrincipal(sub)
	if err != nil {
		return nil, time.Time{}, err
	}

	var expiresAt time.Time
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDelegation, err)
	}
	if exp != nil {
		expiresAt = exp.Time
	}

	return principal, expiresAt, nil
}

// RequestSigningMessage is what SignRequest signs: METHOD\nPATH\nhex(sha256(body)).
func RequestSigningMessage(method, path string, body []byte) []byte {
	sum := sha256.Sum256(body)
	return []byte(method + "\n" + path + "\n" + crypto.EncodeHex(sum[:]))
}

// SignRequest returns the hex signature of an outgoing request.
func SignRequest(id Identity, method, path string, body []byte) (string, error) {
	sig, err := id.Sign(RequestSigningMessage(method, path, body))
	if err != nil {
		return "", fmt.Errorf("error signing request: %w", err)
	}
	return crypto.EncodeHex(sig), nil
}

// VerifyRequest checks a SignRequest signature against the session public key.
func VerifyRequest(pub ed25519.PublicKey, method, path string, body []byte, sigHex string) bool {
	sig, err := crypto.DecodeHex(sigHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, RequestSigningMessage(method, path, body), sig)
}
