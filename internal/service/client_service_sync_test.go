// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/mock"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/testutil"
	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testWindow = 500 * time.Millisecond

type syncFixture struct {
	clock   *testutil.FakeClock
	session *session.Session
	key     *crypto.SymmetricKey
	records *mock.MockRecordAdapter
	ctrl    *SyncController[models.PasswordRecord]
	events  chan models.SyncEvent
}

// newSyncFixture builds a password controller over a session that already
// has an identity and a key, so nothing is triggered by construction.
func newSyncFixture(t *testing.T, snapshots store.SnapshotRepository) *syncFixture {
	t.Helper()

	mc := gomock.NewController(t)
	f := &syncFixture{
		clock:   testutil.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		session: session.New(),
		key:     testutil.NewKey(t),
		records: mock.NewMockRecordAdapter(mc),
		events:  make(chan models.SyncEvent, 64),
	}

	f.session.SetIdentity(testutil.NewIdentity(t, "alice"))
	require.True(t, f.session.SetKey(f.session.Epoch(), f.key))

	f.ctrl = NewSyncController(models.PasswordKind, f.records, snapshots, f.session, SyncConfig{
		DebounceWindow:     testWindow,
		DecryptConcurrency: 2,
		Clock:              f.clock,
	}, logger.Nop())
	t.Cleanup(f.ctrl.Close)

	f.ctrl.Subscribe(func(ev models.SyncEvent) { f.events <- ev })
	return f
}

func (f *syncFixture) waitFor(t *testing.T, op models.SyncOperation, phase models.SyncPhase) models.SyncEvent {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-f.events:
			if ev.Operation == op && ev.Phase == phase {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s/%s event", op, phase)
			return models.SyncEvent{}
		}
	}
}

func (f *syncFixture) noEvents(t *testing.T) {
	t.Helper()
	select {
	case ev := <-f.events:
		t.Fatalf("unexpected event %s/%s", ev.Operation, ev.Phase)
	case <-time.After(50 * time.Millisecond):
	}
}

// ── Debounce ─────────────────────────────────────────────────────────────────

func TestSyncController_Debounce_CoalescesTriggersInWindow(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().List(gomock.Any()).Return(nil, nil).Times(1)

	for range 5 {
		f.ctrl.Trigger()
		assert.Equal(t, models.SyncPending, f.ctrl.State())
		f.clock.Advance(testWindow / 5)
	}
	f.noEvents(t)

	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)
	assert.Equal(t, models.SyncReconciled, f.ctrl.State())
	assert.Equal(t, 0, f.clock.Pending())
}

func TestSyncController_Debounce_SpacedTriggersEachRunACycle(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().List(gomock.Any()).Return(nil, nil).Times(3)

	for range 3 {
		f.ctrl.Trigger()
		f.clock.Advance(testWindow)
		f.waitFor(t, models.OperationSync, models.PhaseSucceeded)
	}
}

func TestSyncController_Debounce_TimerNotFiredBeforeWindow(t *testing.T) {
	f := newSyncFixture(t, nil)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow - time.Millisecond)

	assert.Equal(t, models.SyncPending, f.ctrl.State())
	assert.Equal(t, 1, f.clock.Pending())
}

// ── Readiness ────────────────────────────────────────────────────────────────

func TestSyncController_NoKey_ReturnsToIdleSilently(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.session.SetIdentity(testutil.NewIdentity(t, "bob"))
	f.clock.Advance(testWindow)

	assert.Equal(t, models.SyncIdle, f.ctrl.State())
	f.noEvents(t)
}

func TestSyncController_SessionChanges_DriveCycles(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.session.Clear()
	assert.Equal(t, models.SyncIdle, f.ctrl.State())

	f.session.SetIdentity(testutil.NewIdentity(t, "alice"))
	assert.Equal(t, models.SyncPending, f.ctrl.State(), "a new identity triggers")
	f.clock.Advance(testWindow)
	assert.Equal(t, models.SyncIdle, f.ctrl.State(), "no key yet")

	key := testutil.NewKey(t)
	f.records.EXPECT().List(gomock.Any()).Return([]models.RemoteRecord{
		testutil.EncryptRecord(t, key, 7, "My Bank", "alice", "S3cr3t!"),
	}, nil)

	require.True(t, f.session.SetKey(f.session.Epoch(), key))
	assert.Equal(t, models.SyncPending, f.ctrl.State(), "a new key triggers")
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	rec, ok := f.ctrl.Cache().Get(7)
	require.True(t, ok)
	assert.Equal(t, models.PasswordRecord{ID: 7, Name: "My Bank", Username: "alice", Password: "S3cr3t!"}, rec)
}

// ── Fetching ─────────────────────────────────────────────────────────────────

func TestSyncController_Fetch_ReplacesCacheWholesale(t *testing.T) {
	f := newSyncFixture(t, nil)

	first := []models.RemoteRecord{
		testutil.EncryptRecord(t, f.key, 1, "a", "u1", "p1"),
		testutil.EncryptRecord(t, f.key, 2, "b", "u2", "p2"),
	}
	second := []models.RemoteRecord{
		testutil.EncryptRecord(t, f.key, 2, "b", "u2", "p2-new"),
	}
	gomock.InOrder(
		f.records.EXPECT().List(gomock.Any()).Return(first, nil),
		f.records.EXPECT().List(gomock.Any()).Return(second, nil),
	)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)
	assert.Equal(t, []uint64{1, 2}, f.ctrl.Cache().Order)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	cache := f.ctrl.Cache()
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, "p2-new", cache.Records[2].Password)
	assert.Equal(t, f.clock.Now(), cache.UpdatedAt)
	assert.False(t, cache.Stale)
}

func TestSyncController_Fetch_CorruptedTagSkipsOnlyThatRecord(t *testing.T) {
	f := newSyncFixture(t, nil)

	broken := testutil.EncryptRecord(t, f.key, 2, "Mail", "bob", "hunter2")
	broken.Fields[2] = testutil.CorruptTag(t, broken.Fields[2])

	f.records.EXPECT().List(gomock.Any()).Return([]models.RemoteRecord{
		testutil.EncryptRecord(t, f.key, 1, "My Bank", "alice", "S3cr3t!"),
		broken,
		testutil.EncryptRecord(t, f.key, 3, "Forum", "carol", "pa55"),
	}, nil)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	ev := f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	assert.Equal(t, 1, ev.Warnings)
	cache := f.ctrl.Cache()
	assert.Equal(t, []uint64{1, 3}, cache.Order)
	require.Len(t, cache.Warnings, 1)
	assert.Equal(t, uint64(2), cache.Warnings[0].RecordID)
	assert.Equal(t, []string{"password"}, cache.Warnings[0].Fields)
	assert.ErrorIs(t, cache.Warnings[0].Err, crypto.ErrAuthentication)
	assert.Equal(t, models.SyncReconciled, f.ctrl.State())
}

func TestSyncController_Fetch_WrongFieldCountIsAWarning(t *testing.T) {
	f := newSyncFixture(t, nil)

	f.records.EXPECT().List(gomock.Any()).Return([]models.RemoteRecord{
		testutil.EncryptRecord(t, f.key, 1, "only", "two"),
	}, nil)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	cache := f.ctrl.Cache()
	assert.Zero(t, cache.Len())
	require.Len(t, cache.Warnings, 1)
	assert.ErrorIs(t, cache.Warnings[0].Err, crypto.ErrFormat)
}

func TestSyncController_Fetch_RemoteErrorRestsIdle(t *testing.T) {
	f := newSyncFixture(t, nil)
	remoteErr := errors.New("boom")
	f.records.EXPECT().List(gomock.Any()).Return(nil, remoteErr)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	ev := f.waitFor(t, models.OperationSync, models.PhaseFailed)

	assert.ErrorIs(t, ev.Reason, remoteErr)
	assert.False(t, ev.Stale)
	assert.Equal(t, models.SyncIdle, f.ctrl.State())
}

// ── Single-flight ────────────────────────────────────────────────────────────

func TestSyncController_SingleFlight_TriggersDuringFetchCollapse(t *testing.T) {
	f := newSyncFixture(t, nil)

	release := make(chan struct{})
	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
	)
	f.records.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]models.RemoteRecord, error) {
		mu.Lock()
		inFlight++
		maxSeen = max(maxSeen, inFlight)
		mu.Unlock()

		<-release

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil, nil
	}).Times(2)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseStarted)

	for range 3 {
		f.ctrl.Trigger()
		f.clock.Advance(testWindow)
		assert.Equal(t, models.SyncFetching, f.ctrl.State())
	}
	assert.Equal(t, 0, f.clock.Pending(), "no timer while fetching")

	release <- struct{}{}
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)
	assert.Equal(t, models.SyncPending, f.ctrl.State(), "dirty controller re-enters pending")

	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseStarted)
	release <- struct{}{}
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	assert.Equal(t, models.SyncReconciled, f.ctrl.State())
	assert.Equal(t, 1, maxSeen)
}

// ── Reset ────────────────────────────────────────────────────────────────────

func TestSyncController_Reset_DiscardsInFlightResult(t *testing.T) {
	f := newSyncFixture(t, nil)

	remote := []models.RemoteRecord{testutil.EncryptRecord(t, f.key, 1, "a", "b", "c")}
	release := make(chan struct{})
	f.records.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]models.RemoteRecord, error) {
		<-release
		return remote, nil
	})

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseStarted)

	f.session.Clear()
	assert.Equal(t, models.SyncFetching, f.ctrl.State(), "the running cycle is not aborted")

	close(release)
	require.Eventually(t, func() bool { return f.ctrl.State() == models.SyncIdle }, 2*time.Second, 5*time.Millisecond)

	f.noEvents(t)
	assert.Zero(t, f.ctrl.Cache().Len())
}

func TestSyncController_Reset_CancelsPendingTimer(t *testing.T) {
	f := newSyncFixture(t, nil)

	f.ctrl.Trigger()
	f.ctrl.Reset()
	assert.Equal(t, models.SyncIdle, f.ctrl.State())

	f.clock.Advance(testWindow)
	assert.Equal(t, models.SyncIdle, f.ctrl.State())
	f.noEvents(t)
}

// ── Mutations ────────────────────────────────────────────────────────────────

func TestSyncController_Mutate_CreateEncryptsAndBumpsGeneration(t *testing.T) {
	f := newSyncFixture(t, nil)

	var sent []models.Envelope
	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields []models.Envelope) (uint64, error) {
		sent = fields
		return 42, nil
	})

	id, err := f.ctrl.Mutate(context.Background(), models.CreateRecord(models.PasswordRecord{
		Name: "My Bank", Username: "alice", Password: "S3cr3t!",
	}))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	f.waitFor(t, models.OperationCreate, models.PhaseStarted)
	ev := f.waitFor(t, models.OperationCreate, models.PhaseSucceeded)
	assert.Equal(t, uint64(1), ev.Generation)
	assert.Equal(t, uint64(1), f.ctrl.Generation())
	assert.Equal(t, models.SyncPending, f.ctrl.State(), "an acknowledged mutation triggers a resync")

	require.Len(t, sent, 3)
	plain, err := crypto.DecryptFields(sent, f.key)
	require.NoError(t, err)
	assert.Equal(t, []string{"My Bank", "alice", "S3cr3t!"}, plain)
	assert.Zero(t, f.ctrl.Cache().Len(), "no optimistic merge")

	f.records.EXPECT().List(gomock.Any()).Return([]models.RemoteRecord{{ID: 42, Fields: sent}}, nil)
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	rec, ok := f.ctrl.Cache().Get(42)
	require.True(t, ok)
	assert.Equal(t, "S3cr3t!", rec.Password)
	assert.Equal(t, uint64(1), f.ctrl.Cache().Generation)
}

func TestSyncController_Mutate_GenerationOncePerAck(t *testing.T) {
	f := newSyncFixture(t, nil)
	ctx := context.Background()

	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(uint64(1), nil)
	f.records.EXPECT().Update(gomock.Any(), uint64(1), gomock.Len(3)).Return(nil)
	f.records.EXPECT().Delete(gomock.Any(), uint64(1)).Return(nil)
	f.records.EXPECT().Delete(gomock.Any(), uint64(9)).Return(adapter.ErrNotFound)

	_, err := f.ctrl.Mutate(ctx, models.CreateRecord(models.PasswordRecord{Name: "n"}))
	require.NoError(t, err)
	_, err = f.ctrl.Mutate(ctx, models.UpdateRecord(models.PasswordRecord{ID: 1, Name: "n2"}))
	require.NoError(t, err)
	_, err = f.ctrl.Mutate(ctx, models.DeleteRecord[models.PasswordRecord](1))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), f.ctrl.Generation())

	_, err = f.ctrl.Mutate(ctx, models.DeleteRecord[models.PasswordRecord](9))
	require.ErrorIs(t, err, adapter.ErrNotFound)
	assert.Equal(t, uint64(3), f.ctrl.Generation(), "no increment on failure")

	// the three acknowledgements collapse into one pending cycle
	assert.Equal(t, 1, f.clock.Pending())
}

func TestSyncController_Mutate_AckAfterLogoutLeavesGeneration(t *testing.T) {
	f := newSyncFixture(t, nil)

	f.records.EXPECT().Delete(gomock.Any(), uint64(7)).DoAndReturn(func(context.Context, uint64) error {
		f.session.Clear()
		return nil
	})

	_, err := f.ctrl.Mutate(context.Background(), models.DeleteRecord[models.PasswordRecord](7))
	require.NoError(t, err, "the remote did acknowledge")

	ev := f.waitFor(t, models.OperationDelete, models.PhaseSucceeded)
	assert.Zero(t, ev.Generation)
	assert.Zero(t, f.ctrl.Generation(), "an acknowledgement for a closed session does not count")
	assert.Equal(t, models.SyncIdle, f.ctrl.State())
	assert.Zero(t, f.clock.Pending(), "no cycle is scheduled for the closed session")
}

func TestSyncController_Mutate_FailureEmitsFailedWithoutTrigger(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().Create(gomock.Any(), gomock.Any()).Return(uint64(0), adapter.ErrServerInternal)

	_, err := f.ctrl.Mutate(context.Background(), models.CreateRecord(models.PasswordRecord{Name: "x"}))
	require.ErrorIs(t, err, adapter.ErrRemote)

	ev := f.waitFor(t, models.OperationCreate, models.PhaseFailed)
	assert.ErrorIs(t, ev.Reason, adapter.ErrServerInternal)
	assert.Zero(t, ev.Generation)
	assert.Equal(t, models.SyncIdle, f.ctrl.State())
	assert.Zero(t, f.clock.Pending())
}

func TestSyncController_Mutate_Unauthorized(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().Delete(gomock.Any(), uint64(5)).Return(adapter.ErrUnauthorized)

	_, err := f.ctrl.Mutate(context.Background(), models.DeleteRecord[models.PasswordRecord](5))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestSyncController_Mutate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *syncFixture)
		m       models.Mutation[models.PasswordRecord]
		wantErr error
	}{
		{
			name:    "update without id",
			m:       models.UpdateRecord(models.PasswordRecord{Name: "x"}),
			wantErr: ErrRecordHasNoID,
		},
		{
			name:    "delete without id",
			m:       models.DeleteRecord[models.PasswordRecord](0),
			wantErr: ErrRecordHasNoID,
		},
		{
			name:    "unknown operation",
			m:       models.Mutation[models.PasswordRecord]{Operation: models.OperationSync},
			wantErr: ErrUnknownOperation,
		},
		{
			name:    "not authenticated",
			prepare: func(_ *testing.T, f *syncFixture) { f.session.Clear() },
			m:       models.CreateRecord(models.PasswordRecord{Name: "x"}),
			wantErr: ErrNotAuthenticated,
		},
		{
			name: "key not yet available",
			prepare: func(t *testing.T, f *syncFixture) {
				f.session.SetIdentity(testutil.NewIdentity(t, "alice"))
			},
			m:       models.CreateRecord(models.PasswordRecord{Name: "x"}),
			wantErr: ErrKeyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, nil)
			if tt.prepare != nil {
				tt.prepare(t, f)
			}

			_, err := f.ctrl.Mutate(context.Background(), tt.m)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.ctrl.Generation())
		})
	}
}

// ── Stale snapshot fallback ──────────────────────────────────────────────────

func TestSyncController_FailedFirstCycle_FallsBackToSnapshot(t *testing.T) {
	mc := gomock.NewController(t)
	snapshots := mock.NewMockSnapshotRepository(mc)
	f := newSyncFixture(t, snapshots)

	principal := testutil.PrincipalOf("alice").String()
	fetchedAt := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	snapshots.EXPECT().LoadSnapshot(gomock.Any(), principal, models.PasswordKind.Name).Return(models.RecordSnapshot{
		Records:   []models.RemoteRecord{testutil.EncryptRecord(t, f.key, 4, "Old", "o", "p")},
		FetchedAt: fetchedAt,
	}, nil)
	f.records.EXPECT().List(gomock.Any()).Return(nil, adapter.ErrServerInternal)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	ev := f.waitFor(t, models.OperationSync, models.PhaseFailed)

	assert.True(t, ev.Stale)
	assert.ErrorIs(t, ev.Reason, adapter.ErrServerInternal)
	cache := f.ctrl.Cache()
	assert.True(t, cache.Stale)
	assert.Equal(t, fetchedAt, cache.UpdatedAt)
	rec, ok := cache.Get(4)
	require.True(t, ok)
	assert.Equal(t, "Old", rec.Name)
}

func TestSyncController_SuccessfulCycle_SavesSnapshotAndSkipsFallbackLater(t *testing.T) {
	mc := gomock.NewController(t)
	snapshots := mock.NewMockSnapshotRepository(mc)
	f := newSyncFixture(t, snapshots)

	remote := []models.RemoteRecord{testutil.EncryptRecord(t, f.key, 1, "a", "b", "c")}
	principal := testutil.PrincipalOf("alice").String()

	snapshots.EXPECT().SaveSnapshot(gomock.Any(), principal, models.PasswordKind.Name, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, s models.RecordSnapshot) error {
			assert.Equal(t, remote, s.Records)
			return nil
		})
	gomock.InOrder(
		f.records.EXPECT().List(gomock.Any()).Return(remote, nil),
		f.records.EXPECT().List(gomock.Any()).Return(nil, adapter.ErrServerInternal),
	)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	ev := f.waitFor(t, models.OperationSync, models.PhaseFailed)

	assert.False(t, ev.Stale, "a loaded collection keeps its fresh cache")
	assert.Equal(t, 1, f.ctrl.Cache().Len())
	assert.False(t, f.ctrl.Cache().Stale)
}

func TestSyncController_Fallback_NoSnapshot(t *testing.T) {
	mc := gomock.NewController(t)
	snapshots := mock.NewMockSnapshotRepository(mc)
	f := newSyncFixture(t, snapshots)

	snapshots.EXPECT().LoadSnapshot(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.RecordSnapshot{}, store.ErrSnapshotNotFound)
	f.records.EXPECT().List(gomock.Any()).Return(nil, adapter.ErrServerInternal)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	ev := f.waitFor(t, models.OperationSync, models.PhaseFailed)

	assert.False(t, ev.Stale)
	assert.Zero(t, f.ctrl.Cache().Len())
}

// ── Observer ─────────────────────────────────────────────────────────────────

func TestSyncController_Unsubscribe(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().List(gomock.Any()).Return(nil, nil)

	var got []models.SyncEvent
	var mu sync.Mutex
	unsubscribe := f.ctrl.Subscribe(func(ev models.SyncEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	unsubscribe()

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, got)
}

func TestSyncController_CacheIsACopy(t *testing.T) {
	f := newSyncFixture(t, nil)
	f.records.EXPECT().List(gomock.Any()).Return([]models.RemoteRecord{
		testutil.EncryptRecord(t, f.key, 1, "a", "b", "c"),
	}, nil)

	f.ctrl.Trigger()
	f.clock.Advance(testWindow)
	f.waitFor(t, models.OperationSync, models.PhaseSucceeded)

	cache := f.ctrl.Cache()
	delete(cache.Records, 1)
	cache.Order[0] = 99

	assert.Equal(t, 1, f.ctrl.Cache().Len())
	assert.Equal(t, []uint64{1}, f.ctrl.Cache().Order)
}
