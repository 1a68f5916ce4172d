// Package txnlog records prepared remote transactions in an append-only log,
// so an operator can tell which prepared transactions belong to a committed
// local transaction after a coordinator failure.
package txnlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// Record describes one prepared remote transaction.
type Record struct {
	TxnID        string    `json:"txn_id"`
	Node         string    `json:"node"`
	Port         int       `json:"port"`
	GroupID      int       `json:"group_id"`
	PreparedName string    `json:"prepared_name"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Log stores records as entries of a raft.LogStore.
type Log struct {
	mu     sync.Mutex
	store  raft.LogStore
	closer func() error
	logger *zap.Logger
}

var _ transaction.PreparedRecorder = (*Log)(nil)

// New wraps an existing log store.
func New(store raft.LogStore, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{store: store, logger: logger.Named("txnlog")}
}

// Open opens (or creates) a BoltDB backed log at path.
func Open(path string, logger *zap.Logger) (*Log, error) {
	store, err := raftboltdb.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction log %s: %w", path, err)
	}
	l := New(store, logger)
	l.closer = store.Close
	return l, nil
}

func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

// Record appends one entry per prepared handle of the set.
func (l *Log) Record(ctx context.Context, set *transaction.ConnectionSet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, err := l.store.LastIndex()
	if err != nil {
		return fmt.Errorf("failed to read last log index: %w", err)
	}

	now := time.Now().UTC()
	entries := make([]*raft.Log, 0, set.Len())
	for _, h := range set.Handles {
		if h.State != transaction.StatePrepared {
			continue
		}
		data, err := json.Marshal(Record{
			TxnID:        set.TxnID,
			Node:         h.Node.Name,
			Port:         h.Node.Port,
			GroupID:      h.GroupID,
			PreparedName: h.PreparedName,
			LoggedAt:     now,
		})
		if err != nil {
			return err
		}
		last++
		entries = append(entries, &raft.Log{
			Index:      last,
			Type:       raft.LogCommand,
			Data:       data,
			AppendedAt: now,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	if err := l.store.StoreLogs(entries); err != nil {
		return fmt.Errorf("failed to store prepared transaction records: %w", err)
	}
	l.logger.Debug("Recorded prepared transactions", zap.String("txn", set.TxnID), zap.Int("count", len(entries)))
	return nil
}

// scan calls fn for every record in index order.
func (l *Log) scan(fn func(index uint64, rec Record) error) error {
	first, err := l.store.FirstIndex()
	if err != nil {
		return err
	}
	last, err := l.store.LastIndex()
	if err != nil {
		return err
	}
	if first == 0 {
		return nil
	}
	for i := first; i <= last; i++ {
		var entry raft.Log
		if err := l.store.GetLog(i, &entry); err != nil {
			if errors.Is(err, raft.ErrLogNotFound) {
				continue
			}
			return err
		}
		var rec Record
		if err := json.Unmarshal(entry.Data, &rec); err != nil {
			return fmt.Errorf("corrupt record at index %d: %w", i, err)
		}
		if err := fn(i, rec); err != nil {
			return err
		}
	}
	return nil
}

// List returns every stored record.
func (l *Log) List() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	err := l.scan(func(_ uint64, rec Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}

// Forget removes the records of one local transaction.
func (l *Log) Forget(ctx context.Context, txnID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Collect contiguous index ranges belonging to txnID.
	type span struct{ min, max uint64 }
	var spans []span
	err := l.scan(func(i uint64, rec Record) error {
		if rec.TxnID != txnID {
			return nil
		}
		if n := len(spans); n > 0 && spans[n-1].max == i-1 {
			spans[n-1].max = i
		} else {
			spans = append(spans, span{min: i, max: i})
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, s := range spans {
		if err := l.store.DeleteRange(s.min, s.max); err != nil {
			return fmt.Errorf("failed to delete records %d-%d: %w", s.min, s.max, err)
		}
	}
	return nil
}
