// Package coordinator runs SQL commands on every worker inside remote
// transactions tied to the local transaction, and completes those remote
// transactions with one-phase or two-phase commit when the local
// transaction ends.
package coordinator

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/localtxn"
	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
)

// ErrNoLocalTransaction is returned when a command is dispatched outside a
// local transaction.
var ErrNoLocalTransaction = errors.New("no local transaction in progress")

// Options configures a Coordinator. Directory, Connector and Engine are
// required.
type Options struct {
	Directory transaction.Directory
	Connector transaction.Connector
	Engine    transaction.ProtocolEngine
	// Recorder, if set, stores the names of prepared transactions.
	Recorder transaction.PreparedRecorder
	Settings *Settings
	Logger   *zap.Logger
	Metrics  *internaltelemetry.CoordinatorMetrics
	Tracer   trace.Tracer
}

// Coordinator is one coordinator session. It serves the local transactions
// of txns one at a time.
type Coordinator struct {
	txns       *localtxn.Manager
	cache      *Cache
	dispatcher *Dispatcher
	lifecycle  *Lifecycle
	logger     *zap.Logger
}

// New creates a coordinator and subscribes it to the lifecycle events of
// txns.
func New(txns *localtxn.Manager, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("coordinator")
	metrics := opts.Metrics
	if metrics == nil {
		metrics = internaltelemetry.NewNoopCoordinatorMetrics()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}
	settings := opts.Settings
	if settings == nil {
		settings = NewSettings(transaction.OnePhaseCommit)
	}

	cache := newCache(opts.Directory, opts.Connector, logger, metrics)
	c := &Coordinator{
		txns:       txns,
		cache:      cache,
		dispatcher: newDispatcher(cache, logger, metrics, tracer),
		lifecycle: &Lifecycle{
			cache:    cache,
			engine:   opts.Engine,
			recorder: opts.Recorder,
			settings: settings,
			logger:   logger.Named("lifecycle"),
			metrics:  metrics,
			tracer:   tracer,
		},
		logger: logger,
	}
	txns.Subscribe(c.lifecycle)
	return c
}

// ConnectionSet returns the connection set of the local transaction in
// progress, or nil if none was opened.
func (c *Coordinator) ConnectionSet() *transaction.ConnectionSet {
	return c.cache.Current()
}

// SendCommandToWorkersInOrder runs command on every worker, one after the
// other, inside the current local transaction. On failure the local
// transaction is rolled back and the error names the failing worker.
func (c *Coordinator) SendCommandToWorkersInOrder(ctx context.Context, command string) error {
	return c.send(ctx, command, c.dispatcher.SendInOrder)
}

// SendCommandToWorkersInParallel sends command to every worker at once,
// inside the current local transaction. On failure the local transaction is
// rolled back; other workers may have applied the command by then.
func (c *Coordinator) SendCommandToWorkersInParallel(ctx context.Context, command string) error {
	return c.send(ctx, command, c.dispatcher.SendInParallel)
}

func (c *Coordinator) send(ctx context.Context, command string, fn func(context.Context, string, string) error) error {
	txn := c.txns.Current()
	if txn == nil {
		return ErrNoLocalTransaction
	}
	err := fn(ctx, txn.ID(), command)
	if err == nil {
		return nil
	}
	c.logger.Info("Aborting local transaction after worker failure", zap.String("txn", txn.ID()), zap.Error(err))
	if rbErr := txn.Rollback(ctx); rbErr != nil {
		err = multierr.Append(err, rbErr)
	}
	return err
}
