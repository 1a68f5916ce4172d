package coordinator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/localtxn"
	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
)

// Settings holds process-wide coordinator settings that can be changed
// while the process runs.
type Settings struct {
	protocol atomic.Int32
}

func NewSettings(p transaction.CommitProtocol) *Settings {
	s := &Settings{}
	s.SetCommitProtocol(p)
	return s
}

func (s *Settings) CommitProtocol() transaction.CommitProtocol {
	return transaction.CommitProtocol(s.protocol.Load())
}

func (s *Settings) SetCommitProtocol(p transaction.CommitProtocol) {
	s.protocol.Store(int32(p))
}

// Lifecycle completes the remote transactions of the cached connection set
// when the local transaction commits or aborts.
type Lifecycle struct {
	cache    *Cache
	engine   transaction.ProtocolEngine
	recorder transaction.PreparedRecorder
	settings *Settings
	logger   *zap.Logger
	metrics  *internaltelemetry.CoordinatorMetrics
	tracer   trace.Tracer

	// Per local transaction, reset when the cache is cleared.
	prepared bool
	recorded bool
}

var _ localtxn.Subscriber = (*Lifecycle)(nil)

func (l *Lifecycle) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := l.tracer.Start(ctx, "coordinator."+name)
	defer span.End()

	err := fn(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	l.metrics.ProtocolSteps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", name),
		attribute.String("outcome", outcome),
	))
	return err
}

// HandleEvent reacts to a lifecycle event of the local transaction. It does
// nothing when no connection set is cached.
func (l *Lifecycle) HandleEvent(ctx context.Context, txn *localtxn.Txn, event transaction.Event) error {
	set := l.cache.Current()
	if set == nil {
		return nil
	}

	switch event {
	case transaction.EventPreCommit:
		// The commit protocol is read once per local transaction, here.
		if l.settings.CommitProtocol() != transaction.TwoPhaseCommit {
			return nil
		}
		// A failure here aborts the local transaction and may leave
		// prepared transactions on the workers prepared so far; the abort
		// path rolls them back.
		if err := l.step(ctx, "prepare", func(ctx context.Context) error {
			return l.engine.Prepare(ctx, set)
		}); err != nil {
			return err
		}
		l.prepared = true

		if l.recorder != nil {
			if err := l.recorder.Record(ctx, set); err != nil {
				return fmt.Errorf("failed to record prepared transactions: %w", err)
			}
			l.recorded = true
		}
		return nil

	case transaction.EventCommit:
		defer l.clear()
		// The local commit is durable; failures can only be reported. A
		// prepared transaction may be left behind on a worker.
		err := l.step(ctx, "commit", func(ctx context.Context) error {
			return l.engine.Commit(ctx, set, l.prepared)
		})
		if err != nil {
			l.logger.Warn("Failed to commit on workers after local commit",
				zap.String("txn", set.TxnID), zap.Error(err))
			return err
		}
		l.forgetRecords(ctx, set.TxnID)
		return nil

	case transaction.EventAbort:
		defer l.clear()
		err := l.step(ctx, "abort", func(ctx context.Context) error {
			return l.engine.Abort(ctx, set)
		})
		if err != nil {
			l.logger.Warn("Failed to abort on workers after local abort",
				zap.String("txn", set.TxnID), zap.Error(err))
			return err
		}
		l.forgetRecords(ctx, set.TxnID)
		return nil
	}
	return nil
}

func (l *Lifecycle) forgetRecords(ctx context.Context, txnID string) {
	if !l.recorded {
		return
	}
	if err := l.recorder.Forget(ctx, txnID); err != nil {
		l.logger.Warn("Failed to remove prepared transaction records", zap.String("txn", txnID), zap.Error(err))
	}
}

func (l *Lifecycle) clear() {
	l.cache.Clear()
	l.prepared = false
	l.recorded = false
}
