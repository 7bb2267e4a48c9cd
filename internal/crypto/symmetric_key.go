// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// SymmetricKeySize is the AES-256 key length in bytes.
const SymmetricKeySize = 32

// SymmetricKey is the per-session vault key. The bytes live in a frozen
// memguard buffer (locked into RAM, read-only) and are wiped by Destroy.
// A SymmetricKey is safe for concurrent use.
type SymmetricKey struct {
	mu  sync.RWMutex
	buf *memguard.LockedBuffer
}

// NewSymmetricKey moves raw into locked memory. raw is wiped in all cases.
func NewSymmetricKey(raw []byte) (*SymmetricKey, error) {
	if len(raw) != SymmetricKeySize {
		memguard.WipeBytes(raw)
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes, got %d", ErrInvalidKey, SymmetricKeySize, len(raw))
	}

	buf := memguard.NewBufferFromBytes(raw)
	buf.Freeze()
	return &SymmetricKey{buf: buf}, nil
}

// Alive reports whether the key can still be used.
func (k *SymmetricKey) Alive() bool {
	if k == nil {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.buf != nil && k.buf.IsAlive()
}

// Destroy wipes the key. Later use fails with ErrKeyDestroyed.
func (k *SymmetricKey) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buf != nil {
		k.buf.Destroy()
		k.buf = nil
	}
}

func (k *SymmetricKey) aead() (cipher.AEAD, error) {
	if k == nil {
		return nil, ErrKeyDestroyed
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.buf == nil || !k.buf.IsAlive() {
		return nil, ErrKeyDestroyed
	}

	block, err := aes.NewCipher(k.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return cipher.NewGCM(block)
}
