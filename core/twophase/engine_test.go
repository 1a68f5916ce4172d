package twophase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// --- Test Helpers ---

// fakeConn records executed commands and fails those matching a prefix.
type fakeConn struct {
	host     string
	port     int
	failOn   []string
	executed []string
}

func (c *fakeConn) Exec(ctx context.Context, command string) *transaction.Result {
	c.executed = append(c.executed, command)
	for _, p := range c.failOn {
		if strings.HasPrefix(command, p) {
			return &transaction.Result{Status: transaction.StatusFatalError, Code: "42704", Message: "failed: " + command}
		}
	}
	return &transaction.Result{Status: transaction.StatusCommandOK}
}

func (c *fakeConn) Send(string) error                          { return nil }
func (c *fakeConn) Collect(context.Context) *transaction.Result { return nil }
func (c *fakeConn) Close() error                                { return nil }

func (c *fakeConn) Option(key string) string {
	switch key {
	case "host":
		return c.host
	case "port":
		return strconv.Itoa(c.port)
	}
	return ""
}

func newSet(txnID string, n int) (*transaction.ConnectionSet, []*fakeConn) {
	set := &transaction.ConnectionSet{TxnID: txnID, WorkerCount: n}
	conns := make([]*fakeConn, n)
	for i := 0; i < n; i++ {
		conns[i] = &fakeConn{host: fmt.Sprintf("w%d", i+1), port: 5001 + i}
		set.Handles = append(set.Handles, &transaction.RemoteTransaction{
			Conn:    conns[i],
			State:   transaction.StateOpen,
			Node:    transaction.Worker{Name: conns[i].host, Port: conns[i].port},
			GroupID: i,
		})
	}
	return set, conns
}

// --- Test Cases ---

func TestPreparedName(t *testing.T) {
	require.Equal(t, "gojodb_abc_2", PreparedName("abc", 2))
}

func TestPrepareAndCommit(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	set, conns := newSet("t1", 2)

	require.NoError(t, e.Prepare(ctx, set))
	for i, h := range set.Handles {
		require.Equal(t, transaction.StatePrepared, h.State)
		require.Equal(t, PreparedName("t1", i), h.PreparedName)
	}

	require.NoError(t, e.Commit(ctx, set, true))
	for i, c := range conns {
		require.Equal(t, []string{
			fmt.Sprintf("PREPARE TRANSACTION 'gojodb_t1_%d'", i),
			fmt.Sprintf("COMMIT PREPARED 'gojodb_t1_%d'", i),
		}, c.executed)
		require.Equal(t, transaction.StateCommitted, set.Handles[i].State)
	}
}

func TestPrepareStopsAtFirstFailure(t *testing.T) {
	e := NewEngine(nil)
	set, conns := newSet("t1", 3)
	conns[1].failOn = []string{"PREPARE"}

	err := e.Prepare(context.Background(), set)
	require.Error(t, err)
	require.True(t, errors.Is(err, transaction.ErrProtocolStepFailed))
	require.Contains(t, err.Error(), "w2:5002")

	require.Equal(t, transaction.StatePrepared, set.Handles[0].State)
	require.Equal(t, transaction.StateFailed, set.Handles[1].State)
	require.Equal(t, transaction.StateOpen, set.Handles[2].State)
	require.Empty(t, conns[2].executed)
}

func TestOnePhaseCommit(t *testing.T) {
	e := NewEngine(nil)
	set, conns := newSet("t1", 2)

	require.NoError(t, e.Commit(context.Background(), set, false))
	for i, c := range conns {
		require.Equal(t, []string{"COMMIT"}, c.executed)
		require.Equal(t, transaction.StateCommitted, set.Handles[i].State)
	}
}

func TestCommitContinuesPastFailures(t *testing.T) {
	e := NewEngine(nil)
	set, conns := newSet("t1", 3)
	conns[0].failOn = []string{"COMMIT"}
	conns[2].failOn = []string{"COMMIT"}

	err := e.Commit(context.Background(), set, false)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.Contains(t, err.Error(), "w1:5001")
	require.Contains(t, err.Error(), "w3:5003")

	require.Equal(t, []string{"COMMIT"}, conns[1].executed)
	require.Equal(t, transaction.StateFailed, set.Handles[0].State)
	require.Equal(t, transaction.StateCommitted, set.Handles[1].State)
	require.Equal(t, transaction.StateFailed, set.Handles[2].State)
}

func TestAbortAfterFailedPrepare(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	set, conns := newSet("t1", 3)
	conns[1].failOn = []string{"PREPARE"}

	require.Error(t, e.Prepare(ctx, set))
	// The failing worker never prepared, so ROLLBACK PREPARED fails there.
	conns[1].failOn = []string{"ROLLBACK PREPARED"}

	require.NoError(t, e.Abort(ctx, set))
	require.Equal(t, []string{"PREPARE TRANSACTION 'gojodb_t1_0'", "ROLLBACK PREPARED 'gojodb_t1_0'"}, conns[0].executed)
	require.Equal(t, []string{"PREPARE TRANSACTION 'gojodb_t1_1'", "ROLLBACK", "ROLLBACK PREPARED 'gojodb_t1_1'"}, conns[1].executed)
	require.Equal(t, []string{"ROLLBACK"}, conns[2].executed)
	for _, h := range set.Handles {
		require.Equal(t, transaction.StateAborted, h.State)
	}
}

func TestAbortReportsFailures(t *testing.T) {
	e := NewEngine(nil)
	set, conns := newSet("t1", 2)
	conns[0].failOn = []string{"ROLLBACK"}

	err := e.Abort(context.Background(), set)
	require.Error(t, err)
	require.True(t, errors.Is(err, transaction.ErrProtocolStepFailed))
	require.Equal(t, transaction.StateFailed, set.Handles[0].State)
	require.Equal(t, transaction.StateAborted, set.Handles[1].State)
}

func TestCompletedHandlesAreSkipped(t *testing.T) {
	e := NewEngine(nil)
	set, conns := newSet("t1", 2)
	set.Handles[0].State = transaction.StateCommitted

	require.NoError(t, e.Abort(context.Background(), set))
	require.Empty(t, conns[0].executed)
	require.Equal(t, []string{"ROLLBACK"}, conns[1].executed)
}
