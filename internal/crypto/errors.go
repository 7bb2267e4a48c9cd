package crypto

import "errors"

var (
	// ErrFormat reports malformed hex, a truncated envelope, or key material
	// of the wrong shape.
	ErrFormat = errors.New("malformed encrypted data")
	// ErrAuthentication reports a failed GCM tag or signature check: wrong
	// key or tampered data. It is never retried.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidKey reports key bytes of the wrong size.
	ErrInvalidKey = errors.New("invalid key")
	// ErrKeyDestroyed is returned when a SymmetricKey is used after Destroy.
	ErrKeyDestroyed = errors.New("symmetric key destroyed")
)
