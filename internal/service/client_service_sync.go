// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/internal/session"
	"github.com/MKhiriev/go-pass-sphere/internal/store"
	"github.com/MKhiriev/go-pass-sphere/internal/utils"
	"github.com/MKhiriev/go-pass-sphere/models"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounceWindow is the quiet period used when SyncConfig leaves it
// unset.
const DefaultDebounceWindow = 500 * time.Millisecond

// SyncConfig tunes a SyncController.
type SyncConfig struct {
	// DebounceWindow is how long the controller waits after the last trigger
	// before it fetches.
	DebounceWindow time.Duration
	// DecryptConcurrency bounds parallel record decryption. Zero means
	// runtime.NumCPU().
	DecryptConcurrency int
	// Clock drives the debounce timer. Nil means the real clock.
	Clock utils.Clock
}

// SyncController keeps the decrypted working set of one record collection in
// step with the remote.
//
// The controller is a small state machine:
//
//	Idle ──trigger──▶ Pending ──timer──▶ Fetching ──ok──▶ Reconciled
//	                   ▲  │ trigger re-arms      │
//	                   └──┘                      └─fail─▶ Idle
//
// A trigger while Fetching only marks the controller dirty; the running cycle
// is never aborted, and a dirty controller goes back to Pending when it
// completes. Every transition happens under mu; remote calls and decryption
// run outside it.
type SyncController[T models.Record] struct {
	kind      models.Kind[T]
	records   adapter.RecordAdapter
	snapshots store.SnapshotRepository
	session   *session.Session
	logger    *logger.Logger

	clock       utils.Clock
	window      time.Duration
	concurrency int

	mu       sync.Mutex
	state    models.SyncState
	timer    utils.Timer
	timerSeq uint64
	dirty    bool
	// epoch is bumped by Reset. Results computed under an older epoch are
	// never published.
	epoch      uint64
	cache      models.VaultCache[T]
	loaded     bool
	generation uint64
	closed     bool

	listenersMu  sync.RWMutex
	listeners    map[int]func(models.SyncEvent)
	nextListener int

	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

var (
	_ VaultSync = (*SyncController[models.PasswordRecord])(nil)
	_ VaultSync = (*SyncController[models.TOTPRecord])(nil)
)

// NewSyncController creates the controller for kind and subscribes it to
// sess: a new identity resets and triggers it, a new key triggers it, and a
// cleared session resets it. snapshots may be nil, in which case failed
// cycles have no local fallback.
func NewSyncController[T models.Record](
	kind models.Kind[T],
	records adapter.RecordAdapter,
	snapshots store.SnapshotRepository,
	sess *session.Session,
	cfg SyncConfig,
	logger *logger.Logger,
) *SyncController[T] {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.DecryptConcurrency <= 0 {
		cfg.DecryptConcurrency = runtime.NumCPU()
	}
	if cfg.Clock == nil {
		cfg.Clock = utils.RealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &SyncController[T]{
		kind:        kind,
		records:     records,
		snapshots:   snapshots,
		session:     sess,
		logger:      logger,
		clock:       cfg.Clock,
		window:      cfg.DebounceWindow,
		concurrency: cfg.DecryptConcurrency,
		cache:       models.VaultCache[T]{Records: make(map[uint64]T)},
		listeners:   make(map[int]func(models.SyncEvent)),
		ctx:         ctx,
		cancel:      cancel,
	}
	c.unsubscribe = sess.Subscribe(c.onSessionChange)
	return c
}

// Collection returns the collection name.
func (c *SyncController[T]) Collection() string {
	return c.kind.Name
}

// State returns the current FSM state.
func (c *SyncController[T]) State() models.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cache returns a copy of the decrypted working set.
func (c *SyncController[T]) Cache() models.VaultCache[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.cache
	out.Records = maps.Clone(c.cache.Records)
	out.Order = slices.Clone(c.cache.Order)
	out.Warnings = slices.Clone(c.cache.Warnings)
	return out
}

// Generation returns the number of mutations the remote acknowledged.
func (c *SyncController[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Subscribe registers fn for sync events. fn is called outside the controller
// lock, possibly from a background goroutine.
func (c *SyncController[T]) Subscribe(fn func(models.SyncEvent)) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

// Trigger asks for a sync cycle. Triggers within the debounce window collapse
// into one cycle.
func (c *SyncController[T]) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggerLocked()
}

// Reset forgets everything the controller learned in the current session:
// the pending timer, the dirty flag and the cache. A fetch already in flight
// keeps running but its result is discarded. The generation counter is kept.
func (c *SyncController[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.epoch++
	c.dirty = false
	c.loaded = false
	c.cache = models.VaultCache[T]{Records: make(map[uint64]T), Generation: c.generation}
	if c.state != models.SyncFetching {
		c.state = models.SyncIdle
	}
}

// Close detaches the controller from the session, cancels remote calls and
// waits for the running cycle.
func (c *SyncController[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.unsubscribe()
	c.cancel()
	c.wg.Wait()
}

// Mutate encrypts the record's fields and sends the create, update or delete
// to the remote. On acknowledgement the generation grows by one and a cycle
// is triggered; nothing is merged into the cache optimistically. For a
// create the new id is returned.
func (c *SyncController[T]) Mutate(ctx context.Context, m models.Mutation[T]) (uint64, error) {
	log := c.logger.GetChildLogger()
	log.Debug().Str("func", "SyncController.Mutate").Str("collection", c.kind.Name).
		Str("operation", string(m.Operation)).Msg("mutating record")

	id := m.ID
	switch m.Operation {
	case models.OperationCreate:
		id = 0
	case models.OperationUpdate:
		if id == 0 {
			id = m.Record.RecordID()
		}
		if id == 0 {
			return 0, ErrRecordHasNoID
		}
	case models.OperationDelete:
		if id == 0 {
			return 0, ErrRecordHasNoID
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, m.Operation)
	}

	snap := c.session.Snapshot()
	if snap.Identity == nil {
		return 0, ErrNotAuthenticated
	}
	if m.Operation != models.OperationDelete && !snap.Key.Alive() {
		return 0, ErrKeyUnavailable
	}

	c.mu.Lock()
	epoch := c.epoch
	started := c.eventLocked(m.Operation, models.PhaseStarted)
	c.mu.Unlock()
	c.emit(started)

	var err error
	switch m.Operation {
	case models.OperationCreate:
		var fields []models.Envelope
		if fields, err = crypto.EncryptFields(m.Record.SensitiveFields(), snap.Key); err == nil {
			id, err = c.records.Create(ctx, fields)
		}
	case models.OperationUpdate:
		var fields []models.Envelope
		if fields, err = crypto.EncryptFields(m.Record.SensitiveFields(), snap.Key); err == nil {
			err = c.records.Update(ctx, id, fields)
		}
	case models.OperationDelete:
		err = c.records.Delete(ctx, id)
	}

	if err != nil {
		log.Error().Str("func", "SyncController.Mutate").Str("collection", c.kind.Name).
			Str("operation", string(m.Operation)).Uint64("id", id).Err(err).Msg("mutation failed")

		c.mu.Lock()
		failed := c.eventLocked(m.Operation, models.PhaseFailed)
		c.mu.Unlock()
		failed.Reason = err
		c.emit(failed)
		return 0, mapAdapterError(err)
	}

	c.mu.Lock()
	// an acknowledgement that arrives after logout is not counted
	if epoch == c.epoch && !c.closed {
		c.generation++
		c.cache.Generation = c.generation
		c.triggerLocked()
	}
	succeeded := c.eventLocked(m.Operation, models.PhaseSucceeded)
	c.mu.Unlock()
	c.emit(succeeded)

	log.Info().Str("func", "SyncController.Mutate").Str("collection", c.kind.Name).
		Str("operation", string(m.Operation)).Uint64("id", id).Uint64("generation", succeeded.Generation).Msg("mutation acknowledged")
	return id, nil
}

func (c *SyncController[T]) onSessionChange(ch session.Change) {
	switch ch.Kind {
	case session.IdentityChanged:
		c.Reset()
		c.Trigger()
	case session.KeyChanged:
		c.Trigger()
	case session.Cleared:
		c.Reset()
	}
}

func (c *SyncController[T]) triggerLocked() {
	if c.closed {
		return
	}
	if c.state == models.SyncFetching {
		c.dirty = true
		return
	}
	c.state = models.SyncPending
	c.armLocked()
}

func (c *SyncController[T]) armLocked() {
	c.stopTimerLocked()
	seq := c.timerSeq
	c.timer = c.clock.AfterFunc(c.window, func() { c.fire(seq) })
}

func (c *SyncController[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
}

// settleLocked ends a cycle in rest, or in Pending when triggers arrived
// while it was running.
func (c *SyncController[T]) settleLocked(rest models.SyncState) {
	c.state = rest
	if c.dirty && !c.closed {
		c.dirty = false
		c.state = models.SyncPending
		c.armLocked()
	}
}

func (c *SyncController[T]) fire(seq uint64) {
	c.mu.Lock()
	if seq != c.timerSeq || c.state != models.SyncPending || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	snap := c.session.Snapshot()
	if !snap.Ready() {
		c.state = models.SyncIdle
		c.mu.Unlock()
		c.logger.Debug().Str("func", "SyncController.fire").Str("collection", c.kind.Name).
			Bool("authenticated", snap.Identity != nil).Msg("session not ready, cycle skipped")
		return
	}

	c.state = models.SyncFetching
	c.dirty = false
	epoch := c.epoch
	started := c.eventLocked(models.OperationSync, models.PhaseStarted)
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(started)
	go c.fetch(epoch, snap)
}

func (c *SyncController[T]) fetch(epoch uint64, snap session.Snapshot) {
	defer c.wg.Done()

	log := c.logger.GetChildLogger()
	log.Debug().Str("func", "SyncController.fetch").Str("collection", c.kind.Name).Msg("fetching records")

	remote, err := c.records.List(c.ctx)
	if err != nil {
		c.finishFailed(epoch, snap, err)
		return
	}

	records, order, warnings := c.decryptAll(remote, snap.Key)
	for _, w := range warnings {
		log.Warn().Str("func", "SyncController.fetch").Str("collection", c.kind.Name).
			Uint64("record_id", w.RecordID).Strs("fields", w.Fields).Err(w.Err).Msg("record skipped")
	}

	c.saveSnapshot(epoch, snap, remote)
	c.finish(epoch, records, order, warnings)
}

func (c *SyncController[T]) finish(epoch uint64, records map[uint64]T, order []uint64, warnings []models.DecryptWarning) {
	c.mu.Lock()
	if epoch != c.epoch || c.closed {
		c.settleLocked(models.SyncIdle)
		c.mu.Unlock()
		c.logger.Debug().Str("func", "SyncController.finish").Str("collection", c.kind.Name).Msg("result of a reset session discarded")
		return
	}

	c.cache = models.VaultCache[T]{
		Records:    records,
		Order:      order,
		Generation: c.generation,
		Warnings:   warnings,
		UpdatedAt:  c.clock.Now(),
	}
	c.loaded = true
	c.settleLocked(models.SyncReconciled)
	succeeded := c.eventLocked(models.OperationSync, models.PhaseSucceeded)
	succeeded.Warnings = len(warnings)
	c.mu.Unlock()

	c.logger.Info().Str("func", "SyncController.finish").Str("collection", c.kind.Name).
		Int("records", len(records)).Int("warnings", len(warnings)).Msg("collection reconciled")
	c.emit(succeeded)
}

// finishFailed ends a failed cycle. If the collection has not loaded in this
// session, the last persisted ciphertext snapshot is decrypted and published
// as a stale cache.
func (c *SyncController[T]) finishFailed(epoch uint64, snap session.Snapshot, cause error) {
	c.logger.Error().Str("func", "SyncController.fetch").Str("collection", c.kind.Name).Err(cause).Msg("sync cycle failed")

	c.mu.Lock()
	needFallback := epoch == c.epoch && !c.loaded
	c.mu.Unlock()

	var fallback *models.VaultCache[T]
	if needFallback {
		fallback = c.loadStale(snap)
	}

	c.mu.Lock()
	if epoch != c.epoch || c.closed {
		c.settleLocked(models.SyncIdle)
		c.mu.Unlock()
		return
	}

	stale := false
	if fallback != nil && !c.loaded {
		fallback.Generation = c.generation
		c.cache = *fallback
		stale = true
	}
	c.settleLocked(models.SyncIdle)
	failed := c.eventLocked(models.OperationSync, models.PhaseFailed)
	failed.Reason = cause
	failed.Stale = stale
	if stale {
		failed.Warnings = len(fallback.Warnings)
	}
	c.mu.Unlock()

	c.emit(failed)
}

func (c *SyncController[T]) loadStale(snap session.Snapshot) *models.VaultCache[T] {
	if c.snapshots == nil {
		return nil
	}

	snapshot, err := c.snapshots.LoadSnapshot(c.ctx, snap.Identity.Principal().String(), c.kind.Name)
	if err != nil {
		if !errors.Is(err, store.ErrSnapshotNotFound) {
			c.logger.Warn().Str("func", "SyncController.loadStale").Str("collection", c.kind.Name).Err(err).Msg("cannot load snapshot")
		}
		return nil
	}

	records, order, warnings := c.decryptAll(snapshot.Records, snap.Key)
	c.logger.Info().Str("func", "SyncController.loadStale").Str("collection", c.kind.Name).
		Int("records", len(records)).Time("fetched_at", snapshot.FetchedAt).Msg("serving stale snapshot")

	return &models.VaultCache[T]{
		Records:   records,
		Order:     order,
		Warnings:  warnings,
		Stale:     true,
		UpdatedAt: snapshot.FetchedAt,
	}
}

func (c *SyncController[T]) saveSnapshot(epoch uint64, snap session.Snapshot, remote []models.RemoteRecord) {
	if c.snapshots == nil {
		return
	}

	c.mu.Lock()
	current := epoch == c.epoch && !c.closed
	c.mu.Unlock()
	if !current {
		return
	}

	snapshot := models.RecordSnapshot{Records: remote, FetchedAt: c.clock.Now()}
	if err := c.snapshots.SaveSnapshot(c.ctx, snap.Identity.Principal().String(), c.kind.Name, snapshot); err != nil {
		c.logger.Warn().Str("func", "SyncController.saveSnapshot").Str("collection", c.kind.Name).Err(err).Msg("cannot save snapshot")
	}
}

// decryptAll decrypts every record with at most c.concurrency records in
// flight. A record with any field that fails is left out and reported.
func (c *SyncController[T]) decryptAll(remote []models.RemoteRecord, key *crypto.SymmetricKey) (map[uint64]T, []uint64, []models.DecryptWarning) {
	type outcome struct {
		record  T
		warning *models.DecryptWarning
	}
	outcomes := make([]outcome, len(remote))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, rr := range remote {
		g.Go(func() error {
			r, w := c.decryptRecord(rr, key)
			outcomes[i] = outcome{record: r, warning: w}
			return nil
		})
	}
	_ = g.Wait()

	records := make(map[uint64]T, len(remote))
	order := make([]uint64, 0, len(remote))
	var warnings []models.DecryptWarning
	for i, o := range outcomes {
		if o.warning != nil {
			warnings = append(warnings, *o.warning)
			continue
		}
		id := remote[i].ID
		if _, dup := records[id]; !dup {
			order = append(order, id)
		}
		records[id] = o.record
	}
	return records, order, warnings
}

func (c *SyncController[T]) decryptRecord(rr models.RemoteRecord, key *crypto.SymmetricKey) (T, *models.DecryptWarning) {
	var zero T

	if len(rr.Fields) != len(c.kind.Fields) {
		return zero, &models.DecryptWarning{
			RecordID: rr.ID,
			Fields:   slices.Clone(c.kind.Fields),
			Err:      fmt.Errorf("%w: record has %d fields, want %d", crypto.ErrFormat, len(rr.Fields), len(c.kind.Fields)),
		}
	}

	plain, err := crypto.DecryptFields(rr.Fields, key)
	if err != nil {
		names := slices.Clone(c.kind.Fields)
		var fieldErrs crypto.FieldErrors
		if errors.As(err, &fieldErrs) {
			names = names[:0]
			for _, i := range fieldErrs.Indices() {
				names = append(names, c.kind.Fields[i])
			}
		}
		return zero, &models.DecryptWarning{RecordID: rr.ID, Fields: names, Err: err}
	}

	return c.kind.Build(rr.ID, plain), nil
}

func (c *SyncController[T]) eventLocked(op models.SyncOperation, phase models.SyncPhase) models.SyncEvent {
	return models.SyncEvent{
		Collection: c.kind.Name,
		Operation:  op,
		Phase:      phase,
		Generation: c.generation,
		At:         c.clock.Now(),
	}
}

func (c *SyncController[T]) emit(ev models.SyncEvent) {
	c.listenersMu.RLock()
	fns := make([]func(models.SyncEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
