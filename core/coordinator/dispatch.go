package coordinator

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
)

const (
	modeInOrder  = "in_order"
	modeParallel = "parallel"
)

// Dispatcher sends commands to every worker of the current connection set.
type Dispatcher struct {
	cache   *Cache
	logger  *zap.Logger
	metrics *internaltelemetry.CoordinatorMetrics
	tracer  trace.Tracer
}

func newDispatcher(cache *Cache, logger *zap.Logger, metrics *internaltelemetry.CoordinatorMetrics, tracer trace.Tracer) *Dispatcher {
	return &Dispatcher{
		cache:   cache,
		logger:  logger.Named("dispatch"),
		metrics: metrics,
		tracer:  tracer,
	}
}

// reportRemoteError logs the failure of a command on one worker and returns
// it as a WorkerError.
func (d *Dispatcher) reportRemoteError(kind error, op string, h *transaction.RemoteTransaction, res *transaction.Result, cause error) error {
	detail := ""
	if res != nil || cause == nil {
		detail = res.ErrorDetail()
	}
	werr := transaction.NewWorkerError(kind, op, h.Conn, detail, cause)
	d.logger.Error("Command failed on worker",
		zap.String("host", werr.Host),
		zap.String("port", werr.Port),
		zap.String("detail", werr.Detail),
		zap.Error(cause))
	return werr
}

// commandTag returns the upper-cased leading keyword of command. Spans carry
// only the tag since statements may hold literal values.
func commandTag(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], ";"))
}

func (d *Dispatcher) start(ctx context.Context, mode, command string) (context.Context, trace.Span, time.Time) {
	ctx, span := d.tracer.Start(ctx, "coordinator.send_"+mode,
		trace.WithAttributes(attribute.String("command.tag", commandTag(command))))
	return ctx, span, time.Now()
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, mode string, started time.Time, sent int, err error) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	d.metrics.CommandsDispatched.Add(ctx, int64(sent), attrs)
	d.metrics.DispatchLatency.Record(ctx, float64(time.Since(started).Microseconds())/1000, attrs)
	if err != nil {
		d.metrics.CommandFailures.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SendInOrder runs the command on each worker in turn, waiting for every
// result. It stops at the first worker that does not report success; the
// workers after it do not receive the command.
func (d *Dispatcher) SendInOrder(ctx context.Context, txnID, command string) (err error) {
	ctx, span, started := d.start(ctx, modeInOrder, command)
	sent := 0
	defer func() { d.finish(ctx, span, modeInOrder, started, sent, err) }()

	set, err := d.cache.Acquire(ctx, txnID)
	if err != nil {
		return err
	}

	for _, h := range set.Handles {
		sent++
		res := h.Conn.Exec(ctx, command)
		if !res.OK() {
			return d.reportRemoteError(transaction.ErrCommandRejected, "failed to apply command", h, res, nil)
		}
	}
	return nil
}

// SendInParallel sends the command to every worker before waiting for any
// result, then collects one result per worker. A failure reported by one
// worker does not stop the others from applying the command.
func (d *Dispatcher) SendInParallel(ctx context.Context, txnID, command string) (err error) {
	ctx, span, started := d.start(ctx, modeParallel, command)
	sent := 0
	defer func() { d.finish(ctx, span, modeParallel, started, sent, err) }()

	set, err := d.cache.Acquire(ctx, txnID)
	if err != nil {
		return err
	}

	for _, h := range set.Handles {
		if sendErr := h.Conn.Send(command); sendErr != nil {
			return d.reportRemoteError(transaction.ErrSendFailed, "failed to send command", h, nil, sendErr)
		}
		sent++
	}

	for _, h := range set.Handles {
		res := h.Conn.Collect(ctx)
		if !res.OK() {
			// Results still pending on this and later connections are
			// drained by the next command sent on them.
			return d.reportRemoteError(transaction.ErrCommandRejected, "failed to apply command", h, res, nil)
		}
		// Consume the end-of-results marker.
		h.Conn.Collect(ctx)
	}
	return nil
}
