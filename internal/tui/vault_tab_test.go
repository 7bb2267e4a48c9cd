package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/mock"
	"github.com/MKhiriev/go-pass-sphere/internal/service"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/testutil"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newPasswordController(t *testing.T, records adapter.RecordAdapter) (*service.SyncController[models.PasswordRecord], *crypto.SymmetricKey) {
	t.Helper()
	sess := session.New()
	sess.SetIdentity(testutil.NewIdentity(t, "alice"))
	key := testutil.NewKey(t)
	require.True(t, sess.SetKey(sess.Epoch(), key))

	ctrl := service.NewSyncController(models.PasswordKind, records, nil, sess, service.SyncConfig{
		DebounceWindow: time.Hour,
		Clock:          testutil.NewFakeClock(time.Now()),
	}, logger.Nop())
	t.Cleanup(ctrl.Close)
	return ctrl, key
}

// ── vaultTab ─────────────────────────────────────────────────────────────────

func TestPasswordsTab_SaveCreatesAndUpdates(t *testing.T) {
	mc := gomock.NewController(t)
	records := mock.NewMockRecordAdapter(mc)
	ctrl, key := newPasswordController(t, records)
	tab := passwordsTab(ctrl)

	records.EXPECT().Create(gomock.Any(), gomock.Len(3)).DoAndReturn(func(_ context.Context, fields []models.Envelope) (uint64, error) {
		plain, err := crypto.DecryptFields(fields, key)
		require.NoError(t, err)
		assert.Equal(t, []string{"My Bank", "alice", "S3cr3t!"}, plain)
		return 7, nil
	})
	records.EXPECT().Update(gomock.Any(), uint64(7), gomock.Len(3)).Return(nil)

	require.NoError(t, tab.save(context.Background(), 0, []string{"My Bank", "alice", "S3cr3t!"}))
	require.NoError(t, tab.save(context.Background(), 7, []string{"My Bank", "alice", "n3w"}))

	assert.Equal(t, uint64(2), tab.snapshot().generation)
	assert.Equal(t, "passwords", tab.sync.Collection())
}

func TestPasswordsTab_Remove(t *testing.T) {
	mc := gomock.NewController(t)
	records := mock.NewMockRecordAdapter(mc)
	ctrl, _ := newPasswordController(t, records)

	records.EXPECT().Delete(gomock.Any(), uint64(7)).Return(adapter.ErrNotFound)

	err := passwordsTab(ctrl).remove(context.Background(), 7)
	require.ErrorIs(t, err, adapter.ErrNotFound)
}

func TestPasswordsTab_SnapshotOfEmptyCache(t *testing.T) {
	ctrl, _ := newPasswordController(t, mock.NewMockRecordAdapter(gomock.NewController(t)))
	snap := passwordsTab(ctrl).snapshot()

	assert.Empty(t, snap.rows)
	assert.False(t, snap.stale)
	assert.Zero(t, snap.warnings)
}

// ── tabStatus ────────────────────────────────────────────────────────────────

func TestTabStatus_Apply(t *testing.T) {
	reason := errors.New("remote down")

	tests := []struct {
		name  string
		start tabStatus
		event models.SyncEvent
		want  tabStatus
	}{
		{
			name:  "cycle started",
			event: models.SyncEvent{Operation: models.OperationSync, Phase: models.PhaseStarted},
			want:  tabStatus{syncing: true},
		},
		{
			name:  "started keeps the last failure visible",
			start: tabStatus{err: reason, stale: true},
			event: models.SyncEvent{Operation: models.OperationSync, Phase: models.PhaseStarted},
			want:  tabStatus{syncing: true, err: reason, stale: true},
		},
		{
			name:  "cycle succeeded",
			start: tabStatus{syncing: true, err: reason, stale: true},
			event: models.SyncEvent{Operation: models.OperationSync, Phase: models.PhaseSucceeded, Warnings: 1},
			want:  tabStatus{warnings: 1},
		},
		{
			name:  "cycle failed",
			start: tabStatus{syncing: true},
			event: models.SyncEvent{Operation: models.OperationSync, Phase: models.PhaseFailed, Reason: reason, Stale: true},
			want:  tabStatus{err: reason, stale: true},
		},
		{
			name:  "mutation events are ignored",
			start: tabStatus{syncing: true},
			event: models.SyncEvent{Operation: models.OperationCreate, Phase: models.PhaseFailed, Reason: reason},
			want:  tabStatus{syncing: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.apply(tt.event))
		})
	}
}

func TestTabStatus_Render(t *testing.T) {
	assert.Equal(t, "синхронизировано, версия 4", tabStatus{}.render("*", tabSnapshot{generation: 4}))
	assert.Contains(t, tabStatus{}.render("*", tabSnapshot{stale: true, warnings: 3}), "не расшифровано записей: 3")
	assert.Contains(t, tabStatus{syncing: true}.render("*", tabSnapshot{}), "* синхронизация...")
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func TestHumanizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{service.ErrEmptyAccount, "Укажите учетную запись"},
		{service.ErrNotAuthenticated, "Сервер отклонил сессию, войдите снова"},
		{service.ErrKeyUnavailable, "Ключ шифрования еще не получен"},
		{errors.Join(service.ErrDerivation, crypto.ErrAuthentication), "Ключевой материал не прошел проверку подписи"},
		{adapter.ErrNotFound, "Запись не найдена на сервере"},
		{errors.New("dial tcp: i/o timeout"), "Отсутствует сеть или Сервер недоступен"},
		{errors.New("something else"), "something else"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeError(tt.err))
	}
}

func TestFitText(t *testing.T) {
	assert.Equal(t, "short", fitText("short", 10))
	assert.Equal(t, "Пароль ...", fitText("Пароль от банка", 10))
	assert.Equal(t, "ab", fitText("abcdef", 2))
	assert.Equal(t, "abc", fitText("abc", 0))
}

func TestValueOrNA(t *testing.T) {
	assert.Equal(t, "N/A", valueOrNA("  "))
	assert.Equal(t, "v1", valueOrNA(" v1 "))
}
