package lineproto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// Server is an in-memory worker speaking the line protocol. It tracks the
// transaction state of every session and the prepared transactions, and
// records each statement it applies. It stores no table data.
type Server struct {
	logger   *zap.Logger
	listener net.Listener

	mu       sync.Mutex
	prepared map[string][]string // prepared name -> statements
	applied  []string
	received []string
	rejects  []string
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	closed   bool
}

// session is the per-connection transaction state.
type session struct {
	inTxn      bool
	statements []string
}

// NewServer creates a worker server.
func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:   logger.Named("worker"),
		prepared: make(map[string][]string),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Listen binds addr and serves connections in the background. It returns
// the bound address.
func (s *Server) Listen(addr string) (net.Addr, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.listener = l
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Serve(l)
	}()
	return l.Addr(), nil
}

// Serve accepts connections on l until it is closed.
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Close stops the listener and drops every open session.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	return err
}

// Reject makes every later command containing substr fail.
func (s *Server) Reject(substr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejects = append(s.rejects, strings.ToUpper(substr))
}

// Received returns every command received so far, in arrival order.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

// Applied returns the statements made durable by a commit.
func (s *Server) Applied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.applied...)
}

// Prepared returns the names of the transactions currently prepared.
func (s *Server) Prepared() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.prepared))
	for name := range s.prepared {
		names = append(names, name)
	}
	return names
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	sess := &session{}
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				s.logger.Debug("Error reading from coordinator", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
			}
			return
		}
		command := strings.TrimSpace(line)
		if command == "" {
			continue
		}

		res := s.handleCommand(sess, command)
		if _, err := io.WriteString(conn, encodeResult(res)+statusReady+"\n"); err != nil {
			s.logger.Debug("Error writing response", zap.Error(err))
			return
		}
	}
}

func commandError(code, format string, args ...interface{}) *transaction.Result {
	return &transaction.Result{Status: transaction.StatusFatalError, Code: code, Message: fmt.Sprintf(format, args...)}
}

func commandOK(tag string) *transaction.Result {
	return &transaction.Result{Status: transaction.StatusCommandOK, CommandTag: tag}
}

// quotedName extracts the identifier from PREPARE TRANSACTION 'name' style
// commands.
func quotedName(command string) (string, bool) {
	start := strings.IndexByte(command, '\'')
	end := strings.LastIndexByte(command, '\'')
	if start < 0 || end <= start {
		return "", false
	}
	return command[start+1 : end], true
}

func (s *Server) handleCommand(sess *session, command string) *transaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, command)
	upper := strings.ToUpper(command)
	for _, r := range s.rejects {
		if strings.Contains(upper, r) {
			return commandError("XX000", "command rejected by worker: %s", command)
		}
	}

	fields := strings.Fields(upper)
	switch {
	case fields[0] == "BEGIN":
		sess.inTxn = true
		sess.statements = nil
		return commandOK("BEGIN")

	case len(fields) > 1 && fields[0] == "PREPARE" && fields[1] == "TRANSACTION":
		name, ok := quotedName(command)
		if !ok {
			return commandError("42601", "syntax error in %q", command)
		}
		if !sess.inTxn {
			return commandError("25P01", "PREPARE TRANSACTION can only be used in transaction blocks")
		}
		if _, exists := s.prepared[name]; exists {
			return commandError("42710", "transaction identifier %q is already in use", name)
		}
		s.prepared[name] = sess.statements
		sess.inTxn = false
		sess.statements = nil
		return commandOK("PREPARE TRANSACTION")

	case len(fields) > 1 && (fields[0] == "COMMIT" || fields[0] == "ROLLBACK") && fields[1] == "PREPARED":
		name, ok := quotedName(command)
		if !ok {
			return commandError("42601", "syntax error in %q", command)
		}
		stmts, exists := s.prepared[name]
		if !exists {
			return commandError("42704", "prepared transaction with identifier %q does not exist", name)
		}
		delete(s.prepared, name)
		if fields[0] == "COMMIT" {
			s.applied = append(s.applied, stmts...)
			return commandOK("COMMIT PREPARED")
		}
		return commandOK("ROLLBACK PREPARED")

	case fields[0] == "COMMIT" || fields[0] == "END":
		if sess.inTxn {
			s.applied = append(s.applied, sess.statements...)
		}
		sess.inTxn = false
		sess.statements = nil
		return commandOK("COMMIT")

	case fields[0] == "ROLLBACK" || fields[0] == "ABORT":
		sess.inTxn = false
		sess.statements = nil
		return commandOK("ROLLBACK")

	case fields[0] == "SELECT" || fields[0] == "SHOW":
		return &transaction.Result{Status: transaction.StatusTuplesOK, Rows: 1}
	}

	if sess.inTxn {
		sess.statements = append(sess.statements, command)
	} else {
		s.applied = append(s.applied, command)
	}
	return commandOK(fields[0])
}
