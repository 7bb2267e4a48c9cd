package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/config"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/testutil"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uiFunc func(ctx context.Context) error

func (f uiFunc) Run(ctx context.Context) error { return f(ctx) }

func newServices(t *testing.T, remote *testutil.Remote, dsn string) *service.ClientServices {
	t.Helper()

	cfg := &config.ClientConfig{
		App:     config.ClientApp{DebounceWindow: 10 * time.Millisecond},
		Adapter: config.ClientAdapter{HTTPAddress: remote.URL(), RequestTimeout: 2 * time.Second},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: dsn}},
		Workers: config.ClientWorkers{RefreshInterval: time.Hour, DecryptConcurrency: 2},
	}

	sess := session.New()
	adapters, err := adapter.NewHTTPAdapters(cfg.Adapter, sess, logger.Nop())
	require.NoError(t, err)
	storages, err := store.NewClientStorages(context.Background(), cfg.Storage, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return service.NewClientServices(adapters, storages, sess, cfg, logger.Nop())
}

// ── NewApp ───────────────────────────────────────────────────────────────────

func TestNewApp_Validation(t *testing.T) {
	_, err := NewApp(nil, uiFunc(func(context.Context) error { return nil }), logger.Nop())
	assert.ErrorIs(t, err, ErrNilServices)

	remote := testutil.NewRemote(t)
	_, err = NewApp(newServices(t, remote, filepath.Join(t.TempDir(), "vault.db")), nil, logger.Nop())
	assert.ErrorIs(t, err, ErrNilUI)
}

// ── Run ──────────────────────────────────────────────────────────────────────

func TestApp_Run_WorkersServeTheUI(t *testing.T) {
	remote := testutil.NewRemote(t)
	services := newServices(t, remote, filepath.Join(t.TempDir(), "vault.db"))

	ui := uiFunc(func(ctx context.Context) error {
		if err := services.Auth.Login(ctx, "alice", nil); err != nil {
			return err
		}
		require.Eventually(t, func() bool {
			return services.Passwords.State() == models.SyncReconciled
		}, 3*time.Second, 10*time.Millisecond, "the key coordinator derives a key and the cycle runs")
		return nil
	})

	app, err := NewApp(services, ui, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, app.run(context.Background()))

	assert.Equal(t, 1, remote.Calls(testutil.RouteKeyMaterial))
}

func TestApp_Run_RestoresStoredSession(t *testing.T) {
	remote := testutil.NewRemote(t)
	dsn := filepath.Join(t.TempDir(), "vault.db")

	first := newServices(t, remote, dsn)
	require.NoError(t, first.Auth.Login(context.Background(), "alice", nil))
	first.Close()

	second := newServices(t, remote, dsn)
	var authenticated bool
	app, err := NewApp(second, uiFunc(func(ctx context.Context) error {
		authenticated = second.Auth.IsAuthenticated(ctx)
		return nil
	}), logger.Nop())
	require.NoError(t, err)

	require.NoError(t, app.run(context.Background()))
	assert.True(t, authenticated)
}

func TestApp_Run_UIError(t *testing.T) {
	remote := testutil.NewRemote(t)
	uiErr := errors.New("no tty")
	app, err := NewApp(newServices(t, remote, filepath.Join(t.TempDir(), "vault.db")), uiFunc(func(context.Context) error {
		return uiErr
	}), logger.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, app.run(context.Background()), uiErr)
}
