// Package connection keeps one connection open per worker address so that
// successive local transactions reuse the same session on each worker.
package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// DialFunc opens a new connection to a worker.
type DialFunc func(ctx context.Context, name string, port int) (transaction.Conn, error)

// healthChecker is implemented by connections that know when they can no
// longer be used.
type healthChecker interface {
	Err() error
}

// Manager caches connections by worker address.
type Manager struct {
	mu      sync.Mutex
	conns   map[string]transaction.Conn
	dial    DialFunc
	timeout time.Duration
	logger  *zap.Logger
}

var _ transaction.Connector = (*Manager)(nil)

// NewManager creates a manager that opens connections with dial.
// timeout bounds each dial; zero means no bound beyond ctx.
func NewManager(dial DialFunc, timeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		conns:   make(map[string]transaction.Conn),
		dial:    dial,
		timeout: timeout,
		logger:  logger.Named("connection"),
	}
}

func address(name string, port int) string {
	return fmt.Sprintf("%s:%d", name, port)
}

// GetOrCreate returns the cached connection for name:port, dialing a new one
// if none is cached or the cached one is broken.
func (m *Manager) GetOrCreate(ctx context.Context, name string, port int) (transaction.Conn, error) {
	addr := address(name, port)

	m.mu.Lock()
	conn, ok := m.conns[addr]
	if ok {
		if err := connErr(conn); err != nil {
			m.logger.Info("Discarding broken worker connection", zap.String("address", addr), zap.Error(err))
			delete(m.conns, addr)
			conn.Close()
			ok = false
		}
	}
	m.mu.Unlock()
	if ok {
		return conn, nil
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	conn, err := m.dial(ctx, name, port)
	if err != nil {
		m.logger.Warn("Failed to connect to worker", zap.String("address", addr), zap.Error(err))
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check, another caller may have connected meanwhile.
	if existing, ok := m.conns[addr]; ok {
		conn.Close()
		return existing, nil
	}
	m.conns[addr] = conn
	m.logger.Debug("Connected to worker", zap.String("address", addr))
	return conn, nil
}

func connErr(conn transaction.Conn) error {
	if hc, ok := conn.(healthChecker); ok {
		return hc.Err()
	}
	return nil
}

// CloseAll closes the connections used by the set and drops them from the
// cache, so the next GetOrCreate for those workers dials again.
func (m *Manager) CloseAll(set *transaction.ConnectionSet) {
	if set == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range set.Handles {
		addr := h.Node.Address()
		if cached, ok := m.conns[addr]; ok && cached == h.Conn {
			delete(m.conns, addr)
		}
		if err := h.Conn.Close(); err != nil {
			m.logger.Debug("Error closing worker connection", zap.String("address", addr), zap.Error(err))
		}
	}
}

// Len returns the number of cached connections.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// Close shuts down every cached connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for addr, conn := range m.conns {
		conn.Close()
		delete(m.conns, addr)
	}
}
