package transaction

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionUnavailable = errors.New("connection unavailable")
	ErrCommandRejected       = errors.New("command rejected")
	ErrSendFailed            = errors.New("send failed")
	ErrProtocolStepFailed    = errors.New("protocol step failed")
)

// WorkerError describes a failure on a specific worker.
type WorkerError struct {
	Kind   error  // one of the Err* sentinels above
	Op     string // what was being attempted, e.g. "apply command"
	Host   string
	Port   string
	Detail string // remote error detail, if the worker sent one
	Cause  error
}

func (e *WorkerError) Error() string {
	msg := fmt.Sprintf("%s on %s:%s", e.Op, e.Host, e.Port)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *WorkerError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewWorkerError builds a WorkerError for the node the connection points at.
func NewWorkerError(kind error, op string, conn Conn, detail string, cause error) *WorkerError {
	e := &WorkerError{Kind: kind, Op: op, Detail: detail, Cause: cause}
	if conn != nil {
		e.Host = conn.Option("host")
		e.Port = conn.Option("port")
	}
	return e
}
