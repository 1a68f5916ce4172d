package coordinator

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
)

// Cache holds the connection set of the local transaction in progress. It
// belongs to one coordinator session and is not safe for concurrent use;
// the session runs one local transaction at a time.
type Cache struct {
	directory transaction.Directory
	connector transaction.Connector
	logger    *zap.Logger
	metrics   *internaltelemetry.CoordinatorMetrics

	set *transaction.ConnectionSet
	// complete is false when the build of set failed midway. The handles
	// begun so far stay cached so the abort path can roll them back.
	complete bool
}

func newCache(dir transaction.Directory, conn transaction.Connector, logger *zap.Logger, metrics *internaltelemetry.CoordinatorMetrics) *Cache {
	return &Cache{
		directory: dir,
		connector: conn,
		logger:    logger.Named("cache"),
		metrics:   metrics,
	}
}

// Current returns the cached set, or nil.
func (c *Cache) Current() *transaction.ConnectionSet {
	return c.set
}

// Acquire returns the connection set for the local transaction txnID,
// opening a remote transaction on every worker if there is no usable set.
// Within one local transaction it returns the same handles until the
// worker count changes.
func (c *Cache) Acquire(ctx context.Context, txnID string) (*transaction.ConnectionSet, error) {
	// The worker list is read without locking it against membership
	// changes.
	workers := c.directory.ListWorkers()

	if c.set != nil {
		switch {
		case c.set.TxnID != txnID:
			c.logger.Warn("Dropping connection set of a finished transaction", zap.String("owner", c.set.TxnID), zap.String("txn", txnID))
			c.release()
		case !c.complete:
			c.release()
		case c.set.WorkerCount != len(workers):
			c.logger.Info("Worker count changed, rebuilding connection set",
				zap.Int("cached", c.set.WorkerCount), zap.Int("current", len(workers)))
			c.release()
		default:
			return c.set, nil
		}
	}

	c.set = &transaction.ConnectionSet{TxnID: txnID, WorkerCount: len(workers)}
	c.complete = false
	if err := c.build(ctx, workers); err != nil {
		return nil, err
	}
	c.complete = true
	c.metrics.ConnectionSetsBuilt.Add(ctx, 1)
	c.logger.Debug("Opened worker transactions", zap.String("txn", txnID), zap.Int("workers", len(workers)))
	return c.set, nil
}

func (c *Cache) build(ctx context.Context, workers []transaction.Worker) error {
	for i, w := range workers {
		conn, err := c.connector.GetOrCreate(ctx, w.Name, w.Port)
		if err != nil {
			return &transaction.WorkerError{
				Kind:  transaction.ErrConnectionUnavailable,
				Op:    "could not open connection",
				Host:  w.Name,
				Port:  strconv.Itoa(w.Port),
				Cause: err,
			}
		}

		res := conn.Exec(ctx, "BEGIN")
		if !res.OK() {
			werr := &transaction.WorkerError{
				Kind:   transaction.ErrCommandRejected,
				Op:     "could not start transaction",
				Host:   w.Name,
				Port:   strconv.Itoa(w.Port),
				Detail: res.ErrorDetail(),
			}
			c.logger.Error("Remote BEGIN failed", zap.String("node", w.Address()), zap.String("detail", werr.Detail))
			return werr
		}

		c.set.Handles = append(c.set.Handles, &transaction.RemoteTransaction{
			Conn:    conn,
			State:   transaction.StateOpen,
			Node:    w,
			GroupID: i,
		})
		c.metrics.OpenRemoteTransactions.Add(ctx, 1)
	}
	return nil
}

// release closes the connections of the cached set and forgets it.
func (c *Cache) release() {
	c.connector.CloseAll(c.set)
	c.forget()
}

// Clear forgets the cached set. The connections stay open for the next
// local transaction.
func (c *Cache) Clear() {
	c.forget()
}

func (c *Cache) forget() {
	if c.set == nil {
		return
	}
	c.metrics.OpenRemoteTransactions.Add(context.Background(), -int64(len(c.set.Handles)))
	c.set = nil
	c.complete = false
}
