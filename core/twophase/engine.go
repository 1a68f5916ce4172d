// Package twophase completes remote worker transactions with PREPARE
// TRANSACTION / COMMIT PREPARED / ROLLBACK PREPARED, or with plain COMMIT and
// ROLLBACK for handles that were never prepared.
package twophase

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// Engine implements transaction.ProtocolEngine.
type Engine struct {
	logger *zap.Logger
}

var _ transaction.ProtocolEngine = (*Engine)(nil)

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.Named("twophase")}
}

// PreparedName returns the identifier used for the prepared transaction of
// one group within a local transaction.
func PreparedName(txnID string, groupID int) string {
	return fmt.Sprintf("gojodb_%s_%d", txnID, groupID)
}

func (e *Engine) exec(ctx context.Context, h *transaction.RemoteTransaction, op, command string) error {
	res := h.Conn.Exec(ctx, command)
	if res.OK() {
		return nil
	}
	return transaction.NewWorkerError(transaction.ErrProtocolStepFailed, op, h.Conn, res.ErrorDetail(), nil)
}

// Prepare prepares every open handle. It stops at the first failure; the
// caller is expected to abort, which rolls back the handles prepared so far.
func (e *Engine) Prepare(ctx context.Context, set *transaction.ConnectionSet) error {
	for _, h := range set.Handles {
		if h.State != transaction.StateOpen {
			continue
		}
		name := PreparedName(set.TxnID, h.GroupID)
		h.PreparedName = name
		if err := e.exec(ctx, h, "could not prepare transaction", fmt.Sprintf("PREPARE TRANSACTION '%s'", name)); err != nil {
			// The worker may or may not have prepared; ROLLBACK PREPARED
			// is attempted on abort and tolerates either case.
			h.State = transaction.StateFailed
			return err
		}
		h.State = transaction.StatePrepared
		e.logger.Debug("Prepared remote transaction", zap.String("node", h.Node.Address()), zap.String("name", name))
	}
	return nil
}

// Commit commits every handle. Prepared handles get COMMIT PREPARED when
// wasPrepared is set, other open handles get COMMIT. It keeps going past
// failures and returns all of them.
func (e *Engine) Commit(ctx context.Context, set *transaction.ConnectionSet, wasPrepared bool) error {
	var errs error
	for _, h := range set.Handles {
		var command string
		switch {
		case h.State == transaction.StatePrepared && wasPrepared:
			command = fmt.Sprintf("COMMIT PREPARED '%s'", h.PreparedName)
		case h.State == transaction.StateOpen:
			command = "COMMIT"
		default:
			continue
		}
		if err := e.exec(ctx, h, "could not commit transaction", command); err != nil {
			h.State = transaction.StateFailed
			e.logger.Warn("Failed to commit remote transaction", zap.String("node", h.Node.Address()), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		h.State = transaction.StateCommitted
	}
	return errs
}

// Abort rolls back every handle that has not been completed, including
// handles whose prepare failed midway.
func (e *Engine) Abort(ctx context.Context, set *transaction.ConnectionSet) error {
	var errs error
	for _, h := range set.Handles {
		var command string
		switch {
		case h.State == transaction.StateOpen:
			command = "ROLLBACK"
		case h.State == transaction.StatePrepared:
			command = fmt.Sprintf("ROLLBACK PREPARED '%s'", h.PreparedName)
		case h.State == transaction.StateFailed && h.PreparedName != "":
			// Prepare may have failed before the worker left the
			// transaction block; clear both possibilities.
			h.Conn.Exec(ctx, "ROLLBACK")
			command = fmt.Sprintf("ROLLBACK PREPARED '%s'", h.PreparedName)
		default:
			continue
		}
		if err := e.exec(ctx, h, "could not abort transaction", command); err != nil {
			if h.State == transaction.StateFailed {
				// Nothing was prepared; the plain ROLLBACK above was enough.
				h.State = transaction.StateAborted
				continue
			}
			h.State = transaction.StateFailed
			e.logger.Warn("Failed to abort remote transaction", zap.String("node", h.Node.Address()), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		h.State = transaction.StateAborted
	}
	return errs
}
