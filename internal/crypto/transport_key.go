// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// TransportKeySize is the X25519 public and private key length.
const TransportKeySize = curve25519.PointSize

const transportInfoLabel = "pass-sphere/transport/v1"

// sealedOverhead is ephemeral public key + nonce + GCM tag.
const sealedOverhead = TransportKeySize + NonceSize + 16

// TransportKeyPair is a single-use X25519 keypair for receiving key material
// from the key escrow. The private half never leaves the process.
type TransportKeyPair struct {
	private []byte
	public  []byte
}

// NewTransportKeyPair generates a fresh keypair from crypto/rand.
func NewTransportKeyPair() (*TransportKeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(rand.Reader, priv); err != nil {
		return nil, fmt.Errorf("error generating transport key: %w", err)
	}

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		memguard.WipeBytes(priv)
		return nil, fmt.Errorf("error computing transport public key: %w", err)
	}

	return &TransportKeyPair{private: priv, public: pub}, nil
}

// PublicKey returns a copy of the public key.
func (t *TransportKeyPair) PublicKey() []byte {
	out := make([]byte, len(t.public))
	copy(out, t.public)
	return out
}

// Destroy wipes the private key. Open fails afterwards.
func (t *TransportKeyPair) Destroy() {
	memguard.WipeBytes(t.private)
	t.private = nil
}

// Open decrypts a message sealed by SealToTransportKey for this keypair.
// Layout: ephemeralPub(32) || nonce(12) || ciphertext || tag.
func (t *TransportKeyPair) Open(sealed []byte) ([]byte, error) {
	if t.private == nil {
		return nil, fmt.Errorf("%w: transport key already discarded", ErrInvalidKey)
	}
	if len(sealed) < sealedOverhead {
		return nil, fmt.Errorf("%w: sealed message is %d bytes", ErrFormat, len(sealed))
	}

	ephemeralPub := sealed[:TransportKeySize]
	nonce := sealed[TransportKeySize : TransportKeySize+NonceSize]
	ciphertext := sealed[TransportKeySize+NonceSize:]

	shared, err := curve25519.X25519(t.private, ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer memguard.WipeBytes(shared)

	gcm, err := transportAEAD(shared, ephemeralPub, t.public)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plain, nil
}

// SealToTransportKey encrypts plaintext to the holder of recipientPub using an
// ephemeral X25519 key, HKDF-SHA256 and AES-256-GCM.
func SealToTransportKey(recipientPub, plaintext []byte) ([]byte, error) {
	if len(recipientPub) != TransportKeySize {
		return nil, fmt.Errorf("%w: transport public key must be %d bytes", ErrInvalidKey, TransportKeySize)
	}

	ephemeral, err := NewTransportKeyPair()
	if err != nil {
		return nil, err
	}
	defer ephemeral.Destroy()

	shared, err := curve25519.X25519(ephemeral.private, recipientPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer memguard.WipeBytes(shared)

	gcm, err := transportAEAD(shared, ephemeral.public, recipientPub)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("error generating nonce: %w", err)
	}

	out := make([]byte, 0, sealedOverhead+len(plaintext))
	out = append(out, ephemeral.public...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func transportAEAD(shared, ephemeralPub, recipientPub []byte) (cipher.AEAD, error) {
	info := make([]byte, 0, len(transportInfoLabel)+2*TransportKeySize)
	info = append(info, transportInfoLabel...)
	info = append(info, ephemeralPub...)
	info = append(info, recipientPub...)

	key := make([]byte, SymmetricKeySize)
	defer memguard.WipeBytes(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, info), key); err != nil {
		return nil, fmt.Errorf("error deriving transport key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
