package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrRemote is the root of every failure reported by a remote service.
	ErrRemote = errors.New("remote error")

	ErrBadRequest     = fmt.Errorf("%w: bad request", ErrRemote)
	ErrUnauthorized   = fmt.Errorf("%w: unauthorized", ErrRemote)
	ErrNotFound       = fmt.Errorf("%w: not found", ErrRemote)
	ErrServerInternal = fmt.Errorf("%w: internal server error", ErrRemote)

	ErrNoIdentity     = errors.New("no authenticated identity")
	ErrInvalidAddress = errors.New("invalid adapter http address")
	ErrMalformedReply = fmt.Errorf("%w: malformed reply", ErrRemote)
)
