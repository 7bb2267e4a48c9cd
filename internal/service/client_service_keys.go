// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/awnumar/memguard"
	"golang.org/x/sync/errgroup"
)

// keyDerivationService implements KeyDerivationService on top of the key
// escrow. The escrow verification key is fetched once and reused for the
// process lifetime.
type keyDerivationService struct {
	escrow adapter.KeyEscrowAdapter
	logger *logger.Logger

	mu              sync.Mutex
	verificationKey ed25519.PublicKey
}

// NewKeyDerivationService returns a KeyDerivationService backed by escrow.
func NewKeyDerivationService(escrow adapter.KeyEscrowAdapter, logger *logger.Logger) KeyDerivationService {
	return &keyDerivationService{
		escrow: escrow,
		logger: logger,
	}
}

// DeriveKey generates a transport keypair, asks the escrow for key material
// sealed to it and, concurrently, for the verification key. The material's
// signature is checked against the caller's principal and the transport
// public key before anything is decrypted. The transport private key and the
// intermediate secret are wiped before DeriveKey returns.
func (s *keyDerivationService) DeriveKey(ctx context.Context, id identity.Identity) (*crypto.SymmetricKey, error) {
	log := s.logger.GetChildLogger()
	log.Debug().Str("func", "keyDerivationService.DeriveKey").Str("principal", id.Principal().String()).Msg("deriving vault key")

	transport, err := crypto.NewTransportKeyPair()
	if err != nil {
		return nil, s.fail("generating transport key", err)
	}
	defer transport.Destroy()

	var (
		materialHex     string
		verificationKey ed25519.PublicKey
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.escrow.RequestKeyMaterial(gctx, transport.PublicKey())
		if err != nil {
			return fmt.Errorf("requesting key material: %w", err)
		}
		materialHex = m
		return nil
	})
	g.Go(func() error {
		vk, err := s.getVerificationKey(gctx)
		if err != nil {
			return fmt.Errorf("fetching verification key: %w", err)
		}
		verificationKey = vk
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, s.fail("contacting key escrow", err)
	}

	material, err := crypto.DecodeHex(materialHex)
	if err != nil {
		return nil, s.fail("decoding key material", err)
	}

	secret, err := crypto.OpenKeyMaterial(material, verificationKey, id.Principal(), transport)
	if err != nil {
		return nil, s.fail("opening key material", err)
	}
	defer memguard.WipeBytes(secret)

	key, err := crypto.DeriveSymmetricKey(secret, id.Principal())
	if err != nil {
		return nil, s.fail("deriving symmetric key", err)
	}

	log.Info().Str("func", "keyDerivationService.DeriveKey").Msg("vault key derived")
	return key, nil
}

func (s *keyDerivationService) getVerificationKey(ctx context.Context) (ed25519.PublicKey, error) {
	s.mu.Lock()
	cached := s.verificationKey
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	raw, err := s.escrow.GetVerificationKey(ctx)
	if err != nil {
		return nil, err
	}
	vk, err := crypto.ParseVerificationKey(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.verificationKey = vk
	s.mu.Unlock()
	return vk, nil
}

func (s *keyDerivationService) fail(step string, err error) error {
	s.logger.Error().Str("func", "keyDerivationService.DeriveKey").Str("step", step).Err(err).Msg("key derivation failed")
	return fmt.Errorf("%w: %s: %w", ErrDerivation, step, err)
}
