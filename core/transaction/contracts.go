package transaction

import "context"

// Conn is an established connection to a worker.
type Conn interface {
	// Exec sends a command and waits for all of its results, returning the
	// last one.
	Exec(ctx context.Context, command string) *Result
	// Send queues a command without waiting for its result.
	Send(command string) error
	// Collect returns the next pending result, or nil once the results of
	// the last sent command are exhausted.
	Collect(ctx context.Context) *Result
	// Option returns a connection parameter such as "host" or "port".
	Option(key string) string
	Close() error
}

// Directory lists the worker nodes of the cluster in a stable order.
type Directory interface {
	ListWorkers() []Worker
}

// Connector establishes or reuses connections to workers.
type Connector interface {
	GetOrCreate(ctx context.Context, name string, port int) (Conn, error)
	CloseAll(set *ConnectionSet)
}

// ProtocolEngine completes remote transactions.
type ProtocolEngine interface {
	Prepare(ctx context.Context, set *ConnectionSet) error
	Commit(ctx context.Context, set *ConnectionSet, wasPrepared bool) error
	Abort(ctx context.Context, set *ConnectionSet) error
}

// PreparedRecorder persists the names of prepared remote transactions so
// they can be resolved if the coordinator fails after preparing.
type PreparedRecorder interface {
	Record(ctx context.Context, set *ConnectionSet) error
	Forget(ctx context.Context, txnID string) error
}
