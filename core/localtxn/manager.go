// Package localtxn drives the lifecycle of the coordinator's own transaction
// and notifies subscribers at its pre-commit, commit and abort points.
package localtxn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

var (
	ErrTxnFinished = errors.New("transaction already finished")
	ErrTxnActive   = errors.New("a transaction is already in progress")
)

// Subscriber is notified of lifecycle events. An error returned for
// EventPreCommit turns the commit into an abort; errors returned for the
// terminal events are reported to the caller but do not change the outcome.
type Subscriber interface {
	HandleEvent(ctx context.Context, txn *Txn, event transaction.Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, txn *Txn, event transaction.Event) error

func (f SubscriberFunc) HandleEvent(ctx context.Context, txn *Txn, event transaction.Event) error {
	return f(ctx, txn, event)
}

// Status of a local transaction.
type Status int

const (
	StatusActive Status = iota
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCommitted:
		return "committed"
	}
	return "aborted"
}

// Manager runs one local transaction at a time.
type Manager struct {
	mu          sync.Mutex
	subscribers []Subscriber
	current     *Txn
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger.Named("localtxn")}
}

// Subscribe registers s for the events of every later transaction.
func (m *Manager) Subscribe(s Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, s)
}

// Begin starts a new local transaction.
func (m *Manager) Begin() (*Txn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return nil, fmt.Errorf("%w: %s", ErrTxnActive, m.current.id)
	}
	txn := &Txn{id: uuid.NewString(), mgr: m}
	m.current = txn
	m.logger.Debug("Began local transaction", zap.String("txn", txn.id))
	return txn, nil
}

// Current returns the transaction in progress, or nil.
func (m *Manager) Current() *Txn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) fire(ctx context.Context, txn *Txn, event transaction.Event) error {
	m.mu.Lock()
	subs := append([]Subscriber(nil), m.subscribers...)
	m.mu.Unlock()

	var errs error
	for _, s := range subs {
		if err := s.HandleEvent(ctx, txn, event); err != nil {
			if event == transaction.EventPreCommit {
				return err
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (m *Manager) finish(txn *Txn, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.status = status
	if m.current == txn {
		m.current = nil
	}
}

// Txn is a local transaction.
type Txn struct {
	id     string
	mgr    *Manager
	status Status
}

func (t *Txn) ID() string { return t.id }

func (t *Txn) Status() Status {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	return t.status
}

// CommitError reports a commit that was turned into an abort.
type CommitError struct {
	TxnID string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("transaction %s aborted at pre-commit: %v", e.TxnID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Commit runs the pre-commit point, then commits. If a subscriber fails at
// pre-commit the transaction is aborted instead and a *CommitError returned.
// A non-nil error with a committed status means remote completion failed
// after the local commit.
func (t *Txn) Commit(ctx context.Context) error {
	if t.Status() != StatusActive {
		return ErrTxnFinished
	}
	m := t.mgr
	if err := m.fire(ctx, t, transaction.EventPreCommit); err != nil {
		m.logger.Warn("Pre-commit failed, aborting", zap.String("txn", t.id), zap.Error(err))
		abortErr := m.fire(ctx, t, transaction.EventAbort)
		m.finish(t, StatusAborted)
		return &CommitError{TxnID: t.id, Err: multierr.Append(err, abortErr)}
	}
	m.finish(t, StatusCommitted)
	if err := m.fire(ctx, t, transaction.EventCommit); err != nil {
		m.logger.Warn("Committed locally, remote completion reported errors", zap.String("txn", t.id), zap.Error(err))
		return err
	}
	return nil
}

// Rollback aborts the transaction.
func (t *Txn) Rollback(ctx context.Context) error {
	if t.Status() != StatusActive {
		return ErrTxnFinished
	}
	m := t.mgr
	m.finish(t, StatusAborted)
	return m.fire(ctx, t, transaction.EventAbort)
}
