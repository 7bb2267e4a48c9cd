// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the per-login state shared by the key coordinator and
// the sync controllers: the borrowed identity and the owned symmetric key.
//
// Every login and logout starts a new epoch. Work started under one epoch
// (a key derivation, a fetch) must not publish its result into another.
package session

import (
	"sync"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
)

// ChangeKind says what changed in a Session.
type ChangeKind int

const (
	// IdentityChanged fires when a login completes.
	IdentityChanged ChangeKind = iota
	// KeyChanged fires when the symmetric key becomes available.
	KeyChanged
	// Cleared fires on logout.
	Cleared
)

func (k ChangeKind) String() string {
	switch k {
	case IdentityChanged:
		return "identity"
	case KeyChanged:
		return "key"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after the session is updated.
type Change struct {
	Kind  ChangeKind
	Epoch uint64
}

// Session owns the SymmetricKey; identity is a borrowed reference.
type Session struct {
	mu       sync.RWMutex
	identity identity.Identity
	key      *crypto.SymmetricKey
	epoch    uint64

	listenersMu sync.RWMutex
	listeners   map[int]func(Change)
	nextID      int
}

func New() *Session {
	return &Session{listeners: make(map[int]func(Change))}
}

// SetIdentity installs a freshly authenticated identity. Any key from the
// previous identity is destroyed.
func (s *Session) SetIdentity(id identity.Identity) {
	s.mu.Lock()
	old := s.key
	s.identity = id
	s.key = nil
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	old.Destroy()
	s.notify(Change{Kind: IdentityChanged, Epoch: epoch})
}

// SetKey installs the key derived during epoch. If the session moved on to a
// new epoch meanwhile, the key is destroyed and SetKey returns false.
func (s *Session) SetKey(epoch uint64, key *crypto.SymmetricKey) bool {
	s.mu.Lock()
	if epoch != s.epoch || s.identity == nil {
		s.mu.Unlock()
		key.Destroy()
		return false
	}
	old := s.key
	s.key = key
	s.mu.Unlock()

	if old != key {
		old.Destroy()
	}
	s.notify(Change{Kind: KeyChanged, Epoch: epoch})
	return true
}

// Clear forgets the identity and destroys the key.
func (s *Session) Clear() {
	s.mu.Lock()
	old := s.key
	s.identity = nil
	s.key = nil
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	old.Destroy()
	s.notify(Change{Kind: Cleared, Epoch: epoch})
}

// Identity returns the current identity, if authenticated.
func (s *Session) Identity() (identity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.identity != nil
}

// Key returns the current key if one has been derived and not destroyed.
// A missing key is the normal "not yet available" state.
func (s *Session) Key() (*crypto.SymmetricKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.key.Alive()
}

// Epoch returns the current epoch.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	Identity identity.Identity
	Key      *crypto.SymmetricKey
	Epoch    uint64
}

// Ready reports whether both the identity and the key are present.
func (s Snapshot) Ready() bool {
	return s.Identity != nil && s.Key.Alive()
}

// Snapshot returns identity, key and epoch read under one lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Identity: s.identity, Key: s.key, Epoch: s.epoch}
}

// Subscribe registers fn for session changes. fn runs on the goroutine that
// made the change and must not block.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Session) notify(c Change) {
	s.listenersMu.RLock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
