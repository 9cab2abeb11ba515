// Package autoconfirm flips pre-approved pending transactions to confirmed
// at exactly their due instant, without user action, exactly once.
package autoconfirm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chronofin/chronofin/internal/clock"
	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/service"
)

// Config holds configuration options for the scheduler.
type Config struct {
	Retry service.RetryOptions
}

// DefaultConfig returns the default configuration. Confirmation writes get
// a short bounded retry; the next reconciliation pass or foreground sweep
// remains the backstop for anything that still fails.
func DefaultConfig() Config {
	return Config{
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Scheduler is the long-lived service that arms exactly one timer per
// qualifying pending transaction. It is driven by snapshots of the pending
// set: every call to ScheduleTransactions is a full reconciliation pass,
// safe to repeat with unchanged input.
type Scheduler struct {
	storage      service.Storage
	watcher      *clock.TimestampWatcher
	now          func() time.Time
	timers       map[string]func()
	confirmSubs  map[int]func(string)
	versionSubs  map[int]func(int64)
	unsubChanges func()
	retry        service.RetryOptions
	version      int64
	nextSubID    int
	started      bool
	mu           sync.Mutex
}

// New creates a scheduler with the default configuration.
func New(storage service.Storage, watcher *clock.TimestampWatcher) *Scheduler {
	return NewWithConfig(storage, watcher, DefaultConfig())
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(storage service.Storage, watcher *clock.TimestampWatcher, config Config) *Scheduler {
	return &Scheduler{
		storage:     storage,
		watcher:     watcher,
		now:         time.Now,
		timers:      make(map[string]func()),
		confirmSubs: make(map[int]func(string)),
		versionSubs: make(map[int]func(int64)),
		retry:       config.Retry,
	}
}

// Start attaches the scheduler to the storage change stream and runs an
// initial resume pass. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.unsubChanges = s.storage.SubscribeChanges(func() {
		s.reconcile(ctx)
	})
	s.mu.Unlock()

	slog.Info("Auto-confirmation scheduler started")
	s.Resume(ctx)
}

// Stop cancels every pending timer and detaches from the change stream.
// Safe to call when not started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	unsub := s.unsubChanges
	s.unsubChanges = nil
	cancels := make([]func(), 0, len(s.timers))
	for id, cancel := range s.timers {
		cancels = append(cancels, cancel)
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	for _, cancel := range cancels {
		cancel()
	}
	slog.Info("Auto-confirmation scheduler stopped")
}

// Resume re-fetches the pending set and compensates for timers that failed
// to fire while the process was suspended: past-due rows are confirmed
// immediately, future rows re-armed.
func (s *Scheduler) Resume(ctx context.Context) {
	rows, err := s.storage.GetPendingTransactions(ctx)
	if err != nil {
		slog.Error("Failed to load pending transactions on resume", "error", err)
		return
	}
	s.ConfirmPastDue(ctx, rows)
	s.ScheduleTransactions(ctx, rows)
}

func (s *Scheduler) reconcile(ctx context.Context) {
	rows, err := s.storage.GetPendingTransactions(ctx)
	if err != nil {
		slog.Error("Failed to load pending transactions", "error", err)
		return
	}
	s.ScheduleTransactions(ctx, rows)
}

// ScheduleTransactions performs a full reconciliation pass over a snapshot
// of the pending set. Qualifying rows that are past due confirm immediately;
// future rows get exactly one armed timer each, replacing any prior timer
// for the same id. Previously scheduled ids absent from the new qualifying
// set are canceled only after the new set is armed, so a transaction present
// in both sets is never left unscheduled even momentarily.
func (s *Scheduler) ScheduleTransactions(ctx context.Context, rows []model.Transaction) {
	global := s.requireConfirmation(ctx)

	s.mu.Lock()
	current := make(map[string]bool, len(rows))
	var pastDue []string
	for _, txn := range rows {
		if !qualifies(&txn, global) {
			continue
		}
		if txn.Date.IsZero() {
			slog.Warn("Skipping transaction without date", "id", txn.ID)
			continue
		}

		if !txn.Date.After(s.now()) {
			pastDue = append(pastDue, txn.ID)
			continue
		}

		id := txn.ID
		if cancel, ok := s.timers[id]; ok {
			cancel()
		}
		// The callback is dispatched on its own goroutine: if the due
		// instant slips past between the check above and Watch, the
		// watcher fires synchronously and fire must not contend for the
		// lock held here.
		s.timers[id] = s.watcher.Watch(txn.Date, func() {
			go s.fire(ctx, id)
		})
		current[id] = true
	}

	var stale []func()
	for id, cancel := range s.timers {
		if !current[id] {
			stale = append(stale, cancel)
			delete(s.timers, id)
		}
	}
	armed := len(s.timers)
	s.mu.Unlock()

	for _, cancel := range stale {
		cancel()
	}
	for _, id := range pastDue {
		go s.confirm(ctx, id)
	}

	slog.Info("Reconciled pending transactions",
		"snapshot", len(rows),
		"armed", armed,
		"past_due", len(pastDue),
		"canceled", len(stale))
}

// ConfirmPastDue immediately confirms every qualifying row whose due
// instant has already passed. Used on resume, when suspended timers cannot
// be trusted to have fired.
func (s *Scheduler) ConfirmPastDue(ctx context.Context, rows []model.Transaction) {
	global := s.requireConfirmation(ctx)
	now := s.now()

	for _, txn := range rows {
		if !qualifies(&txn, global) || txn.Date.IsZero() {
			continue
		}
		if !txn.Date.After(now) {
			s.confirm(ctx, txn.ID)
		}
	}
}

// CancelSchedule cancels a single transaction's timer without touching
// others.
func (s *Scheduler) CancelSchedule(id string) {
	s.mu.Lock()
	cancel, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// OnConfirmed registers a callback invoked with the transaction id after
// every successful confirmation. The returned function removes it.
func (s *Scheduler) OnConfirmed(fn func(id string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	subID := s.nextSubID
	s.nextSubID++
	s.confirmSubs[subID] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.confirmSubs, subID)
	}
}

// Version returns the monotonically increasing confirmation counter.
// Consumers re-derive grouped and upcoming views when it changes.
func (s *Scheduler) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SubscribeVersion registers a callback invoked with the new version after
// every confirmation.
func (s *Scheduler) SubscribeVersion(fn func(version int64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	subID := s.nextSubID
	s.nextSubID++
	s.versionSubs[subID] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.versionSubs, subID)
	}
}

// fire is the timer callback for a scheduled transaction.
func (s *Scheduler) fire(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	s.confirm(ctx, id)
}

// confirm runs the storage write with bounded retry. Failures are logged
// and swallowed: the next reconciliation pass or resume sweep retries, so
// confirmation is eventually consistent rather than transactional with the
// UI.
func (s *Scheduler) confirm(ctx context.Context, id string) {
	opts := service.ConfirmOptions{UpdateTransactionDate: s.updateDateOnConfirm(ctx)}

	err := common.WithRetry(ctx, func() error {
		return s.storage.ConfirmTransaction(ctx, id, opts)
	}, s.retry)
	if err != nil {
		slog.Warn("Failed to confirm transaction", "id", id, "error", err)
		return
	}

	s.mu.Lock()
	s.version++
	version := s.version
	confirmFns := make([]func(string), 0, len(s.confirmSubs))
	for _, fn := range s.confirmSubs {
		confirmFns = append(confirmFns, fn)
	}
	versionFns := make([]func(int64), 0, len(s.versionSubs))
	for _, fn := range s.versionSubs {
		versionFns = append(versionFns, fn)
	}
	s.mu.Unlock()

	slog.Info("Auto-confirmed transaction", "id", id, "version", version)
	for _, fn := range confirmFns {
		fn(id)
	}
	for _, fn := range versionFns {
		fn(version)
	}
}

// qualifies reports whether a transaction is pre-approved for
// auto-confirmation: effective policy does not require manual confirmation,
// still pending, and not deleted.
func qualifies(txn *model.Transaction, globalRequireConfirmation bool) bool {
	return !txn.EffectiveRequiresConfirmation(globalRequireConfirmation) &&
		txn.Pending &&
		!txn.Deleted
}

func (s *Scheduler) requireConfirmation(ctx context.Context) bool {
	prefs, err := s.storage.GetPreferences(ctx)
	if err != nil {
		slog.Warn("Failed to read preferences, assuming manual confirmation", "error", err)
		return true
	}
	return prefs.RequireConfirmation
}

func (s *Scheduler) updateDateOnConfirm(ctx context.Context) bool {
	prefs, err := s.storage.GetPreferences(ctx)
	if err != nil {
		return false
	}
	return prefs.UpdateDateOnConfirm
}
