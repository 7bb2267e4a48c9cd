// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"
)

const (
	escrowSignatureLabel = "pass-sphere/key-escrow/v1"
	// vaultKeyLabel separates the vault field key from any other key derived
	// from the same escrowed secret.
	vaultKeyLabel = "aes-256-gcm"
)

// ParseVerificationKey decodes the key escrow's hex Ed25519 public key.
func ParseVerificationKey(s string) (ed25519.PublicKey, error) {
	raw, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: verification key is %d bytes, want %d", ErrFormat, len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// SealKeyMaterial produces escrowed key material for principal:
// signature(64) || sealed, where sealed is secret encrypted to transportPub
// and the signature covers the label, the length-prefixed principal,
// transportPub and sealed.
func SealKeyMaterial(secret []byte, signer ed25519.PrivateKey, principal, transportPub []byte) ([]byte, error) {
	sealed, err := SealToTransportKey(transportPub, secret)
	if err != nil {
		return nil, err
	}

	sig := ed25519.Sign(signer, escrowSigningMessage(principal, transportPub, sealed))
	return append(sig, sealed...), nil
}

// OpenKeyMaterial checks the escrow signature, then decrypts the secret with
// the transport private key. Signature failure is reported before any
// decryption is attempted. The caller wipes the returned secret.
func OpenKeyMaterial(material []byte, verificationKey ed25519.PublicKey, principal []byte, transport *TransportKeyPair) ([]byte, error) {
	if len(material) < ed25519.SignatureSize+sealedOverhead {
		return nil, fmt.Errorf("%w: key material is %d bytes", ErrFormat, len(material))
	}

	sig := material[:ed25519.SignatureSize]
	sealed := material[ed25519.SignatureSize:]

	if !ed25519.Verify(verificationKey, escrowSigningMessage(principal, transport.public, sealed), sig) {
		return nil, fmt.Errorf("%w: key material signature does not verify", ErrAuthentication)
	}

	return transport.Open(sealed)
}

// DeriveSymmetricKey binds the escrowed secret to principal:
// HKDF-SHA256(secret, salt=principal, info="aes-256-gcm") truncated to 32
// bytes.
func DeriveSymmetricKey(secret, principal []byte) (*SymmetricKey, error) {
	raw := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, principal, []byte(vaultKeyLabel)), raw); err != nil {
		memguard.WipeBytes(raw)
		return nil, fmt.Errorf("error deriving symmetric key: %w", err)
	}
	return NewSymmetricKey(raw)
}

func escrowSigningMessage(principal, transportPub, sealed []byte) []byte {
	msg := make([]byte, 0, len(escrowSignatureLabel)+1+len(principal)+len(transportPub)+len(sealed))
	msg = append(msg, escrowSignatureLabel...)
	msg = append(msg, byte(len(principal)))
	msg = append(msg, principal...)
	msg = append(msg, transportPub...)
	msg = append(msg, sealed...)
	return msg
}
