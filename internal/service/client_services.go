package service

import (
	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/config"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/utils"
	"github.com/MKhiriev/go-pass-sphere/internal/workers"
	"github.com/MKhiriev/go-pass-sphere/models"
)

// ClientServices groups every client-side service around one session.
type ClientServices struct {
	Session        *session.Session
	Auth           ClientAuthService
	Keys           KeyDerivationService
	KeyCoordinator *KeyCoordinator
	Passwords      *SyncController[models.PasswordRecord]
	TOTPs          *SyncController[models.TOTPRecord]
	RefreshJob     *RefreshJob
}

// NewClientServices wires the services. sess must be the identity source the
// adapters were built with.
func NewClientServices(
	adapters *adapter.Adapters,
	storages *store.ClientStorages,
	sess *session.Session,
	cfg *config.ClientConfig,
	logger *logger.Logger,
) *ClientServices {
	clock := utils.RealClock()
	syncCfg := SyncConfig{
		DebounceWindow:     cfg.App.DebounceWindow,
		DecryptConcurrency: cfg.Workers.DecryptConcurrency,
		Clock:              clock,
	}

	keys := NewKeyDerivationService(adapters.KeyEscrow, logger)
	passwords := NewSyncController(models.PasswordKind, adapters.Passwords, storages.Snapshots, sess, syncCfg, logger)
	totps := NewSyncController(models.TOTPKind, adapters.TOTPs, storages.Snapshots, sess, syncCfg, logger)

	return &ClientServices{
		Session:        sess,
		Auth:           NewClientAuthService(adapters.Auth, storages.Sessions, storages.Snapshots, sess, clock, logger),
		Keys:           keys,
		KeyCoordinator: NewKeyCoordinator(keys, sess, logger),
		Passwords:      passwords,
		TOTPs:          totps,
		RefreshJob:     NewRefreshJob(cfg.Workers.RefreshInterval, logger, passwords, totps),
	}
}

// Controllers returns the sync controllers of every collection.
func (s *ClientServices) Controllers() []VaultSync {
	return []VaultSync{s.Passwords, s.TOTPs}
}

// Workers returns the background workers in start order.
func (s *ClientServices) Workers() *workers.Workers {
	return workers.NewWorkers(s.KeyCoordinator, s.RefreshJob)
}

// Close detaches the controllers from the session and waits for their
// running cycles.
func (s *ClientServices) Close() {
	s.Passwords.Close()
	s.TOTPs.Close()
}
