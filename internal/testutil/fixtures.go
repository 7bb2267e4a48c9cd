package testutil

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/models"
)

const fixtureSignKey = "fixture-delegation-key"

// PrincipalOf derives the principal the fake auth service assigns to account.
func PrincipalOf(account string) identity.Principal {
	sum := sha256.Sum256([]byte(principalSalt + account))
	return identity.Principal(sum[:identity.PrincipalMaxSize])
}

// Delegation issues a delegation token for account valid for ttl from now.
func Delegation(t testing.TB, account string, ttl time.Duration, now time.Time) string {
	t.Helper()

	token, err := GenerateDelegationToken(tokenIssuer, PrincipalOf(account).String(), ttl, fixtureSignKey, now)
	if err != nil {
		t.Fatalf("issue delegation: %v", err)
	}
	return token
}

// NewIdentity builds a session identity for account without any remote.
func NewIdentity(t testing.TB, account string) *identity.SessionIdentity {
	t.Helper()

	seed, _, err := identity.NewSessionKey()
	if err != nil {
		t.Fatalf("new session key: %v", err)
	}
	id, err := identity.New(seed, Delegation(t, account, tokenTTL, time.Now()))
	if err != nil {
		t.Fatalf("build identity: %v", err)
	}
	return id
}

// NewKey returns a random vault key destroyed at the end of the test.
func NewKey(t testing.TB) *crypto.SymmetricKey {
	t.Helper()

	raw := make([]byte, crypto.SymmetricKeySize)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("random key: %v", err)
	}
	key, err := crypto.NewSymmetricKey(raw)
	if err != nil {
		t.Fatalf("new symmetric key: %v", err)
	}
	t.Cleanup(key.Destroy)
	return key
}

// EncryptRecord encrypts fields under key into a remote record.
func EncryptRecord(t testing.TB, key *crypto.SymmetricKey, id uint64, fields ...string) models.RemoteRecord {
	t.Helper()

	envs, err := crypto.EncryptFields(fields, key)
	if err != nil {
		t.Fatalf("encrypt fields: %v", err)
	}
	return models.RemoteRecord{ID: id, Fields: envs}
}

// CorruptTag flips one bit of the envelope's authentication tag.
func CorruptTag(t testing.TB, env models.Envelope) models.Envelope {
	t.Helper()

	raw, err := crypto.DecodeHex(string(env))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	return models.Envelope(crypto.EncodeHex(raw))
}
