// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/MKhiriev/go-pass-sphere/models"
)

// NonceSize is the AES-GCM nonce length prepended to every envelope.
const NonceSize = 12

// EncryptField seals plaintext with AES-256-GCM under key using a fresh random
// nonce and no associated data. The result is hex(nonce || ciphertext || tag).
func EncryptField(plaintext string, key *SymmetricKey) (models.Envelope, error) {
	gcm, err := key.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("error generating nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return models.Envelope(EncodeHex(sealed)), nil
}

// DecryptField opens an envelope produced by EncryptField.
//
// It fails with ErrFormat if the envelope is not valid hex or is shorter than
// the nonce, and with ErrAuthentication if the tag does not verify.
func DecryptField(env models.Envelope, key *SymmetricKey) (string, error) {
	data, err := DecodeHex(string(env))
	if err != nil {
		return "", err
	}
	if len(data) < NonceSize {
		return "", fmt.Errorf("%w: envelope is %d bytes, shorter than the nonce", ErrFormat, len(data))
	}

	gcm, err := key.aead()
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, data[:NonceSize], data[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return string(plain), nil
}
