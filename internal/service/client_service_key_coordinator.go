package service

import (
	"context"
	"errors"
	"sync"

	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
)

// KeyCoordinator derives the vault key in the background whenever the
// session gets a new identity and installs it into the session. A result
// from an earlier epoch is dropped by session.SetKey.
//
// KeyCoordinator implements workers.Worker.
type KeyCoordinator struct {
	keys    KeyDerivationService
	session *session.Session
	logger  *logger.Logger

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	cancel      context.CancelFunc
	unsubscribe func()
	lastErr     error

	wg sync.WaitGroup
}

// NewKeyCoordinator creates a coordinator. It does nothing until Start.
func NewKeyCoordinator(keys KeyDerivationService, sess *session.Session, logger *logger.Logger) *KeyCoordinator {
	return &KeyCoordinator{
		keys:    keys,
		session: sess,
		logger:  logger,
	}
}

// Start subscribes to the session. If an identity is already installed
// without a key (a restored session), derivation starts right away.
func (c *KeyCoordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.mu.Unlock()
		return
	}
	c.ctx, c.stop = context.WithCancel(ctx)
	c.unsubscribe = c.session.Subscribe(c.onChange)
	c.mu.Unlock()

	c.logger.Info().Str("func", "KeyCoordinator.Start").Msg("key coordinator started")
	c.Retry()
}

// Stop unsubscribes, cancels a running derivation and waits for it.
func (c *KeyCoordinator) Stop() {
	c.mu.Lock()
	if c.unsubscribe == nil {
		c.mu.Unlock()
		return
	}
	c.unsubscribe()
	c.unsubscribe = nil
	c.stop()
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info().Str("func", "KeyCoordinator.Stop").Msg("key coordinator stopped")
}

// Retry starts a derivation for the current epoch if the session has an
// identity but no key.
func (c *KeyCoordinator) Retry() {
	snap := c.session.Snapshot()
	if snap.Identity == nil || snap.Key.Alive() {
		return
	}
	c.derive(snap.Epoch)
}

// Wait blocks until the running derivation, if any, has finished.
func (c *KeyCoordinator) Wait() {
	c.wg.Wait()
}

// LastError returns the error of the most recent failed derivation of the
// current session, or nil once a derivation succeeds. A derivation cancelled
// by logout or by a newer login never sets it.
func (c *KeyCoordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *KeyCoordinator) onChange(ch session.Change) {
	switch ch.Kind {
	case session.IdentityChanged:
		c.derive(ch.Epoch)
	case session.Cleared:
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.lastErr = nil
		c.mu.Unlock()
	}
}

func (c *KeyCoordinator) derive(epoch uint64) {
	c.mu.Lock()
	if c.ctx == nil || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()

		snap := c.session.Snapshot()
		if snap.Epoch != epoch || snap.Identity == nil {
			return
		}

		key, err := c.keys.DeriveKey(ctx, snap.Identity)

		c.mu.Lock()
		current := ctx.Err() == nil && c.session.Epoch() == epoch && !errors.Is(err, context.Canceled)
		if current {
			c.lastErr = err
		}
		c.mu.Unlock()

		if err != nil {
			if !current {
				c.logger.Debug().Str("func", "KeyCoordinator.derive").Uint64("epoch", epoch).Err(err).
					Msg("derivation of a superseded session dropped")
				return
			}
			c.logger.Warn().Str("func", "KeyCoordinator.derive").Uint64("epoch", epoch).Err(err).
				Msg("vault key unavailable until the next login or retry")
			return
		}

		if !c.session.SetKey(epoch, key) {
			c.logger.Debug().Str("func", "KeyCoordinator.derive").Uint64("epoch", epoch).Msg("derived key belongs to a closed session, dropped")
		}
	}()
}
