// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
)

// mapAdapterError adds the service sentinel that matches a transport or key
// error. The original error stays in the chain so the remote message is kept.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrNoIdentity):
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	case crypto.IsKeyError(err):
		// the session was cleared while the mutation was encrypting
		return fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}

	return err
}
