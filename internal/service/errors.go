package service

import "errors"

var (
	// ErrDerivation wraps every failure of the key derivation protocol.
	ErrDerivation = errors.New("key derivation failed")

	// ErrKeyUnavailable is returned by key-dependent operations while the
	// session has an identity but no symmetric key yet.
	ErrKeyUnavailable = errors.New("key not yet available")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session is expired")
	ErrEmptyAccount     = errors.New("empty account")

	ErrRecordHasNoID    = errors.New("record has no id")
	ErrUnknownOperation = errors.New("unknown operation")
)
