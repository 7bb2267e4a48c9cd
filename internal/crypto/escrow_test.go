package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPrincipal = []byte("principal-0001")
	testSecret    = bytes.Repeat([]byte{0x42}, 32)
)

func newSigner(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

// ── TransportKeyPair ─────────────────────────────────────────────────────────

func TestTransportKeyPair_SealOpen(t *testing.T) {
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)
	assert.Len(t, tk.PublicKey(), TransportKeySize)

	sealed, err := SealToTransportKey(tk.PublicKey(), []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sealed, sealedOverhead+5)

	plain, err := tk.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), plain)
}

func TestTransportKeyPair_OtherKeyCannotOpen(t *testing.T) {
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)
	other, err := NewTransportKeyPair()
	require.NoError(t, err)

	sealed, err := SealToTransportKey(tk.PublicKey(), []byte("hello"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestTransportKeyPair_Errors(t *testing.T) {
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)

	_, err = tk.Open(make([]byte, sealedOverhead-1))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = SealToTransportKey([]byte("short"), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	sealed, err := SealToTransportKey(tk.PublicKey(), []byte("x"))
	require.NoError(t, err)
	tk.Destroy()
	_, err = tk.Open(sealed)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// ── Key material ─────────────────────────────────────────────────────────────

func TestKeyMaterial_RoundTrip(t *testing.T) {
	verifyKey, signKey := newSigner(t)
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)

	material, err := SealKeyMaterial(testSecret, signKey, testPrincipal, tk.PublicKey())
	require.NoError(t, err)

	secret, err := OpenKeyMaterial(material, verifyKey, testPrincipal, tk)
	require.NoError(t, err)
	assert.Equal(t, testSecret, secret)
}

func TestKeyMaterial_SignatureChecks(t *testing.T) {
	verifyKey, signKey := newSigner(t)
	otherVerifyKey, _ := newSigner(t)
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)

	material, err := SealKeyMaterial(testSecret, signKey, testPrincipal, tk.PublicKey())
	require.NoError(t, err)

	t.Run("foreign verification key", func(t *testing.T) {
		_, err := OpenKeyMaterial(material, otherVerifyKey, testPrincipal, tk)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("material bound to another principal", func(t *testing.T) {
		_, err := OpenKeyMaterial(material, verifyKey, []byte("someone-else"), tk)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := append([]byte(nil), material...)
		tampered[len(tampered)-1] ^= 0x01
		_, err := OpenKeyMaterial(tampered, verifyKey, testPrincipal, tk)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := OpenKeyMaterial(material[:ed25519.SignatureSize+10], verifyKey, testPrincipal, tk)
		assert.ErrorIs(t, err, ErrFormat)
	})
}

func TestParseVerificationKey(t *testing.T) {
	pub, _ := newSigner(t)

	got, err := ParseVerificationKey(EncodeHex(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	_, err = ParseVerificationKey(EncodeHex(pub[:31]))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ParseVerificationKey("xyz")
	assert.ErrorIs(t, err, ErrFormat)
}

// ── DeriveSymmetricKey ───────────────────────────────────────────────────────

func TestDeriveSymmetricKey_StablePerPrincipal(t *testing.T) {
	k1, err := DeriveSymmetricKey(testSecret, testPrincipal)
	require.NoError(t, err)
	t.Cleanup(k1.Destroy)
	k2, err := DeriveSymmetricKey(testSecret, testPrincipal)
	require.NoError(t, err)
	t.Cleanup(k2.Destroy)
	other, err := DeriveSymmetricKey(testSecret, []byte("principal-0002"))
	require.NoError(t, err)
	t.Cleanup(other.Destroy)

	env, err := EncryptField("My Bank", k1)
	require.NoError(t, err)

	got, err := DecryptField(env, k2)
	require.NoError(t, err)
	assert.Equal(t, "My Bank", got)

	_, err = DecryptField(env, other)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDerivedKey_PasswordRecordScenario(t *testing.T) {
	verifyKey, signKey := newSigner(t)
	tk, err := NewTransportKeyPair()
	require.NoError(t, err)

	material, err := SealKeyMaterial(testSecret, signKey, testPrincipal, tk.PublicKey())
	require.NoError(t, err)
	secret, err := OpenKeyMaterial(material, verifyKey, testPrincipal, tk)
	require.NoError(t, err)
	tk.Destroy()

	key, err := DeriveSymmetricKey(secret, testPrincipal)
	require.NoError(t, err)
	t.Cleanup(key.Destroy)

	fields := []string{"My Bank", "alice", "S3cr3t!"}
	stored := make([]string, len(fields))
	for i, f := range fields {
		env, err := EncryptField(f, key)
		require.NoError(t, err)
		stored[i] = string(env)
	}

	for i, env := range stored {
		got, err := DecryptField(models.Envelope(env), key)
		require.NoError(t, err)
		assert.Equal(t, fields[i], got)
	}
}
