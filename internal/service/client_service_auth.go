package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/identity"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/utils"
	"github.com/awnumar/memguard"
)

type clientAuthService struct {
	adapter   adapter.AuthAdapter
	sessions  store.SessionRepository
	snapshots store.SnapshotRepository
	session   *session.Session
	clock     utils.Clock
	logger    *logger.Logger
}

// NewClientAuthService creates the auth collaborator. The persisted session
// lets a restart skip the login; snapshots are dropped on logout.
func NewClientAuthService(
	authAdapter adapter.AuthAdapter,
	sessions store.SessionRepository,
	snapshots store.SnapshotRepository,
	sess *session.Session,
	clock utils.Clock,
	logger *logger.Logger,
) ClientAuthService {
	if clock == nil {
		clock = utils.RealClock()
	}
	return &clientAuthService{
		adapter:   authAdapter,
		sessions:  sessions,
		snapshots: snapshots,
		session:   sess,
		clock:     clock,
		logger:    logger,
	}
}

func (a *clientAuthService) IsAuthenticated(_ context.Context) bool {
	id, ok := a.session.Identity()
	if !ok {
		return false
	}
	if exp, ok := id.(interface{ Expired(time.Time) bool }); ok && exp.Expired(a.clock.Now()) {
		return false
	}
	return true
}

func (a *clientAuthService) Identity() (identity.Identity, bool) {
	return a.session.Identity()
}

// Login generates a fresh session key, registers it for account and installs
// the resulting identity. A failure to persist the session is logged; the
// login itself still succeeds.
func (a *clientAuthService) Login(ctx context.Context, account string, onSuccess func()) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return ErrEmptyAccount
	}

	log := a.logger.GetChildLogger()
	log.Info().Str("func", "clientAuthService.Login").Str("account", account).Msg("logging in")

	seed, pub, err := identity.NewSessionKey()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(seed)

	delegation, err := a.adapter.Login(ctx, account, pub)
	if err != nil {
		log.Error().Str("func", "clientAuthService.Login").Err(err).Msg("remote login failed")
		return fmt.Errorf("error logging in: %w", mapAdapterError(err))
	}

	id, err := identity.New(seed, delegation.Token)
	if err != nil {
		log.Error().Str("func", "clientAuthService.Login").Err(err).Msg("unusable delegation")
		return fmt.Errorf("error building identity: %w", err)
	}

	now := a.clock.Now()
	if id.Expired(now) {
		return ErrSessionExpired
	}

	if err = a.sessions.SaveSession(ctx, id.Stored(now)); err != nil {
		log.Warn().Str("func", "clientAuthService.Login").Err(err).Msg("session will not survive a restart")
	}

	a.session.SetIdentity(id)
	log.Info().Str("func", "clientAuthService.Login").Str("principal", id.Principal().String()).Msg("logged in")

	if onSuccess != nil {
		onSuccess()
	}
	return nil
}

// Logout revokes the delegation remotely (best effort), forgets the persisted
// session and snapshots, and clears the session. The key is destroyed by the
// session.
func (a *clientAuthService) Logout(ctx context.Context) error {
	log := a.logger.GetChildLogger()

	id, ok := a.session.Identity()
	if ok {
		if err := a.adapter.Logout(ctx); err != nil {
			log.Warn().Str("func", "clientAuthService.Logout").Err(err).Msg("remote logout failed")
		}
	}

	// the session goes first so no cycle republishes data while the local
	// copies are being removed
	a.session.Clear()

	var errs []error
	if err := a.sessions.DeleteSession(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error deleting local session: %w", err))
	}
	if ok {
		if err := a.snapshots.DeleteSnapshots(ctx, id.Principal().String()); err != nil {
			errs = append(errs, fmt.Errorf("error deleting snapshots: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Error().Str("func", "clientAuthService.Logout").Err(err).Msg("local cleanup failed")
		return err
	}

	log.Info().Str("func", "clientAuthService.Logout").Msg("logged out")
	return nil
}

// RestoreSession reinstalls the persisted session if it is still valid. An
// expired or unreadable session is deleted.
func (a *clientAuthService) RestoreSession(ctx context.Context) (bool, error) {
	if a.IsAuthenticated(ctx) {
		return true, nil
	}

	log := a.logger.GetChildLogger()

	stored, err := a.sessions.LoadSession(ctx)
	if errors.Is(err, store.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error loading session: %w", err)
	}
	defer memguard.WipeBytes(stored.SessionSeed)

	id, err := identity.FromStored(stored)
	if err != nil {
		log.Warn().Str("func", "clientAuthService.RestoreSession").Err(err).Msg("stored session is unusable, deleting")
		return false, a.sessions.DeleteSession(ctx)
	}

	if id.Expired(a.clock.Now()) {
		log.Info().Str("func", "clientAuthService.RestoreSession").Time("expired_at", id.ExpiresAt()).Msg("stored session expired")
		return false, a.sessions.DeleteSession(ctx)
	}

	a.session.SetIdentity(id)
	log.Info().Str("func", "clientAuthService.RestoreSession").Str("principal", id.Principal().String()).Msg("session restored")
	return true, nil
}
