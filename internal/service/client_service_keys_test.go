package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/mock"
	"github.com/MKhiriev/go-pass-sphere/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeEscrow seals a fixed secret per principal, the way the key escrow does.
type fakeEscrow struct {
	signer  ed25519.PrivateKey
	secrets map[string][]byte
}

func newFakeEscrow(t *testing.T) *fakeEscrow {
	t.Helper()
	_, signer, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &fakeEscrow{signer: signer, secrets: make(map[string][]byte)}
}

func (e *fakeEscrow) secretFor(t *testing.T, p identity.Principal) []byte {
	t.Helper()
	if s, ok := e.secrets[p.String()]; ok {
		return s
	}
	s := make([]byte, 32)
	_, err := rand.Read(s)
	require.NoError(t, err)
	e.secrets[p.String()] = s
	return s
}

func (e *fakeEscrow) material(t *testing.T, p identity.Principal, signer ed25519.PrivateKey) func(context.Context, []byte) (string, error) {
	return func(_ context.Context, transportPub []byte) (string, error) {
		m, err := crypto.SealKeyMaterial(e.secretFor(t, p), signer, p, transportPub)
		if err != nil {
			return "", err
		}
		return crypto.EncodeHex(m), nil
	}
}

func (e *fakeEscrow) verificationKey() string {
	return crypto.EncodeHex(e.signer.Public().(ed25519.PublicKey))
}

// sameKey reports whether b decrypts what a encrypted.
func sameKey(t *testing.T, a, b *crypto.SymmetricKey) bool {
	t.Helper()
	env, err := crypto.EncryptField("probe", a)
	require.NoError(t, err)
	plain, err := crypto.DecryptField(env, b)
	return err == nil && plain == "probe"
}

// ── DeriveKey ────────────────────────────────────────────────────────────────

func TestDeriveKey_Success_MyBankScenario(t *testing.T) {
	mc := gomock.NewController(t)
	escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
	escrow := newFakeEscrow(t)
	id := testutil.NewIdentity(t, "alice")

	escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Len(crypto.TransportKeySize)).
		DoAndReturn(escrow.material(t, id.Principal(), escrow.signer))
	escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(escrow.verificationKey(), nil)

	svc := NewKeyDerivationService(escrowAdapter, logger.Nop())
	key, err := svc.DeriveKey(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(key.Destroy)

	envs, err := crypto.EncryptFields([]string{"My Bank", "alice", "S3cr3t!"}, key)
	require.NoError(t, err)
	plain, err := crypto.DecryptFields(envs, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"My Bank", "alice", "S3cr3t!"}, plain)
}

func TestDeriveKey_SameIdentityAcrossSessions_SameKey(t *testing.T) {
	mc := gomock.NewController(t)
	escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
	escrow := newFakeEscrow(t)

	first := testutil.NewIdentity(t, "alice")
	second := testutil.NewIdentity(t, "alice")
	other := testutil.NewIdentity(t, "bob")
	require.Equal(t, first.Principal(), second.Principal())

	gomock.InOrder(
		escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(escrow.material(t, first.Principal(), escrow.signer)),
		escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(escrow.material(t, second.Principal(), escrow.signer)),
		escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(escrow.material(t, other.Principal(), escrow.signer)),
	)
	escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(escrow.verificationKey(), nil).Times(1)

	svc := NewKeyDerivationService(escrowAdapter, logger.Nop())
	ctx := context.Background()

	k1, err := svc.DeriveKey(ctx, first)
	require.NoError(t, err)
	k2, err := svc.DeriveKey(ctx, second)
	require.NoError(t, err)
	k3, err := svc.DeriveKey(ctx, other)
	require.NoError(t, err)
	t.Cleanup(func() { k1.Destroy(); k2.Destroy(); k3.Destroy() })

	assert.True(t, sameKey(t, k1, k2), "same principal derives the same key")
	assert.False(t, sameKey(t, k1, k3), "another principal derives another key")
}

func TestDeriveKey_ForgedSignature(t *testing.T) {
	mc := gomock.NewController(t)
	escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
	escrow := newFakeEscrow(t)
	_, forger, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id := testutil.NewIdentity(t, "alice")

	escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(escrow.material(t, id.Principal(), forger))
	escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(escrow.verificationKey(), nil)

	key, err := NewKeyDerivationService(escrowAdapter, logger.Nop()).DeriveKey(context.Background(), id)
	require.ErrorIs(t, err, ErrDerivation)
	assert.ErrorIs(t, err, crypto.ErrAuthentication)
	assert.Nil(t, key)
}

func TestDeriveKey_MaterialBoundToAnotherPrincipal(t *testing.T) {
	mc := gomock.NewController(t)
	escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
	escrow := newFakeEscrow(t)
	id := testutil.NewIdentity(t, "alice")

	escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).
		DoAndReturn(escrow.material(t, testutil.PrincipalOf("mallory"), escrow.signer))
	escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(escrow.verificationKey(), nil)

	_, err := NewKeyDerivationService(escrowAdapter, logger.Nop()).DeriveKey(context.Background(), id)
	require.ErrorIs(t, err, ErrDerivation)
	assert.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestDeriveKey_Failures(t *testing.T) {
	remoteErr := errors.New("escrow down")

	tests := []struct {
		name     string
		material func(context.Context, []byte) (string, error)
		vk       string
		vkErr    error
		wantErr  error
	}{
		{
			name:     "material request fails",
			material: func(context.Context, []byte) (string, error) { return "", remoteErr },
			vk:       crypto.EncodeHex(make([]byte, ed25519.PublicKeySize)),
			wantErr:  remoteErr,
		},
		{
			name:     "verification key request fails",
			material: func(context.Context, []byte) (string, error) { return "00", nil },
			vkErr:    adapter.ErrServerInternal,
			wantErr:  adapter.ErrRemote,
		},
		{
			name:     "verification key wrong size",
			material: func(context.Context, []byte) (string, error) { return "00", nil },
			vk:       "abcd",
			wantErr:  crypto.ErrFormat,
		},
		{
			name:     "material not hex",
			material: func(context.Context, []byte) (string, error) { return "zz", nil },
			vk:       crypto.EncodeHex(make([]byte, ed25519.PublicKeySize)),
			wantErr:  crypto.ErrFormat,
		},
		{
			name:     "material truncated",
			material: func(context.Context, []byte) (string, error) { return "0011", nil },
			vk:       crypto.EncodeHex(make([]byte, ed25519.PublicKeySize)),
			wantErr:  crypto.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := gomock.NewController(t)
			escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
			escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(tt.material).AnyTimes()
			escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(tt.vk, tt.vkErr).AnyTimes()

			key, err := NewKeyDerivationService(escrowAdapter, logger.Nop()).DeriveKey(context.Background(), testutil.NewIdentity(t, "alice"))
			require.ErrorIs(t, err, ErrDerivation)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, key)
		})
	}
}

func TestDeriveKey_VerificationKeyCachedOnlyAfterSuccess(t *testing.T) {
	mc := gomock.NewController(t)
	escrowAdapter := mock.NewMockKeyEscrowAdapter(mc)
	escrow := newFakeEscrow(t)
	id := testutil.NewIdentity(t, "alice")

	escrowAdapter.EXPECT().RequestKeyMaterial(gomock.Any(), gomock.Any()).DoAndReturn(escrow.material(t, id.Principal(), escrow.signer)).Times(2)
	gomock.InOrder(
		escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return("", adapter.ErrServerInternal),
		escrowAdapter.EXPECT().GetVerificationKey(gomock.Any()).Return(escrow.verificationKey(), nil),
	)

	svc := NewKeyDerivationService(escrowAdapter, logger.Nop())
	_, err := svc.DeriveKey(context.Background(), id)
	require.ErrorIs(t, err, ErrDerivation)

	key, err := svc.DeriveKey(context.Background(), id)
	require.NoError(t, err)
	key.Destroy()
}
