package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/localtxn"
	"github.com/sushant-115/gojodb-coordinator/core/membership"
	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
)

// --- Test Helpers ---

// testWorker scripts the responses of one worker connection.
type testWorker struct {
	transaction.Worker
	conn *ConnMock

	// failOn maps a command prefix to the result returned for it.
	failOn  map[string]*transaction.Result
	sendErr error
	pending []*transaction.Result
}

func failResult(msg string) *transaction.Result {
	return &transaction.Result{Status: transaction.StatusFatalError, Code: "XX000", Message: msg}
}

func newTestWorker(name string, port int) *testWorker {
	w := &testWorker{
		Worker: transaction.Worker{Name: name, Port: port},
		failOn: make(map[string]*transaction.Result),
	}
	w.conn = &ConnMock{
		ExecFunc: func(ctx context.Context, command string) *transaction.Result {
			return w.resultFor(command)
		},
		SendFunc: func(command string) error {
			if w.sendErr != nil {
				return w.sendErr
			}
			w.pending = []*transaction.Result{w.resultFor(command)}
			return nil
		},
		CollectFunc: func(ctx context.Context) *transaction.Result {
			if len(w.pending) == 0 {
				return nil
			}
			res := w.pending[0]
			w.pending = w.pending[1:]
			return res
		},
		OptionFunc: func(key string) string {
			switch key {
			case "host":
				return name
			case "port":
				return strconv.Itoa(port)
			}
			return ""
		},
		CloseFunc: func() error { return nil },
	}
	return w
}

func (w *testWorker) resultFor(command string) *transaction.Result {
	for prefix, res := range w.failOn {
		if strings.HasPrefix(command, prefix) {
			return res
		}
	}
	tag, _, _ := strings.Cut(command, " ")
	return &transaction.Result{Status: transaction.StatusCommandOK, CommandTag: tag}
}

// commands returns every command the worker executed synchronously.
func (w *testWorker) commands() []string {
	var out []string
	for _, c := range w.conn.ExecCalls() {
		out = append(out, c.Command)
	}
	return out
}

// testCluster is a set of scripted workers behind a membership directory.
type testCluster struct {
	workers     []*testWorker
	dir         *membership.Directory
	connector   *ConnectorMock
	unreachable map[string]bool
}

func newTestCluster(t *testing.T, n int) *testCluster {
	t.Helper()
	c := &testCluster{
		dir:         membership.NewDirectory(),
		unreachable: make(map[string]bool),
	}
	for i := 1; i <= n; i++ {
		c.addWorker(fmt.Sprintf("w%d", i), 5000+i)
	}
	c.connector = &ConnectorMock{
		GetOrCreateFunc: func(ctx context.Context, name string, port int) (transaction.Conn, error) {
			addr := transaction.Worker{Name: name, Port: port}.Address()
			if c.unreachable[addr] {
				return nil, errors.New("connection refused")
			}
			for _, w := range c.workers {
				if w.Address() == addr {
					return w.conn, nil
				}
			}
			return nil, fmt.Errorf("unknown worker %s", addr)
		},
		CloseAllFunc: func(set *transaction.ConnectionSet) {},
	}
	return c
}

func (c *testCluster) addWorker(name string, port int) *testWorker {
	w := newTestWorker(name, port)
	c.workers = append(c.workers, w)
	c.dir.Add(name, port)
	return w
}

func (c *testCluster) worker(i int) *testWorker {
	return c.workers[i-1]
}

func (c *testCluster) newCache() *Cache {
	return newCache(c.dir, c.connector, zap.NewNop(), internaltelemetry.NewNoopCoordinatorMetrics())
}

func (c *testCluster) newDispatcher() *Dispatcher {
	return newDispatcher(c.newCache(), zap.NewNop(), internaltelemetry.NewNoopCoordinatorMetrics(), nooptrace.NewTracerProvider().Tracer(""))
}

// newCoordinator wires a coordinator over the cluster with the given engine.
func (c *testCluster) newCoordinator(engine transaction.ProtocolEngine, protocol transaction.CommitProtocol, opts ...func(*Options)) (*Coordinator, *localtxn.Manager) {
	txns := localtxn.NewManager(zap.NewNop())
	o := Options{
		Directory: c.dir,
		Connector: c.connector,
		Engine:    engine,
		Settings:  NewSettings(protocol),
		Logger:    zap.NewNop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(txns, o), txns
}

// recordingEngine returns a ProtocolEngineMock whose steps all succeed.
func recordingEngine() *ProtocolEngineMock {
	return &ProtocolEngineMock{
		PrepareFunc: func(ctx context.Context, set *transaction.ConnectionSet) error { return nil },
		CommitFunc: func(ctx context.Context, set *transaction.ConnectionSet, wasPrepared bool) error {
			return nil
		},
		AbortFunc: func(ctx context.Context, set *transaction.ConnectionSet) error { return nil },
	}
}
