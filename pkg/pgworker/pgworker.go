// Package pgworker connects the coordinator to PostgreSQL workers through
// pgconn.
package pgworker

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// Config holds the connection parameters shared by every worker.
type Config struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnString builds the keyword/value connection string for one worker.
func (c Config) ConnString(host string, port int) string {
	s := fmt.Sprintf("host=%s port=%d", host, port)
	if c.User != "" {
		s += " user=" + c.User
	}
	if c.Password != "" {
		s += " password=" + c.Password
	}
	if c.Database != "" {
		s += " dbname=" + c.Database
	}
	if c.SSLMode != "" {
		s += " sslmode=" + c.SSLMode
	}
	return s
}

// Dialer returns a dial function for connection.NewManager.
func (c Config) Dialer() func(ctx context.Context, name string, port int) (transaction.Conn, error) {
	return func(ctx context.Context, name string, port int) (transaction.Conn, error) {
		pg, err := pgconn.Connect(ctx, c.ConnString(name, port))
		if err != nil {
			return nil, err
		}
		return &Conn{pg: pg, host: name, port: port}, nil
	}
}

// Conn adapts a *pgconn.PgConn to transaction.Conn. Send and Collect use
// pipeline mode, so a sent command is written to the server before any
// result is read.
type Conn struct {
	pg       *pgconn.PgConn
	host     string
	port     int
	pipeline *pgconn.Pipeline
}

var _ transaction.Conn = (*Conn)(nil)

// fromError converts a pgconn error into a failed result.
func fromError(err error) *transaction.Result {
	res := &transaction.Result{Status: transaction.StatusFatalError, Message: err.Error()}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		res.Code = pgErr.Code
		res.Message = pgErr.Message
		res.Detail = pgErr.Detail
	}
	return res
}

// fromResult converts a completed pgconn result.
func fromResult(r *pgconn.Result) *transaction.Result {
	if r.Err != nil {
		return fromError(r.Err)
	}
	if len(r.FieldDescriptions) > 0 {
		return &transaction.Result{Status: transaction.StatusTuplesOK, Rows: len(r.Rows), CommandTag: r.CommandTag.String()}
	}
	return &transaction.Result{Status: transaction.StatusCommandOK, CommandTag: r.CommandTag.String()}
}

// endPipeline closes a pipeline left open by an interrupted Send/Collect.
func (c *Conn) endPipeline() error {
	if c.pipeline == nil {
		return nil
	}
	err := c.pipeline.Close()
	c.pipeline = nil
	return err
}

func (c *Conn) Exec(ctx context.Context, command string) *transaction.Result {
	if err := c.endPipeline(); err != nil {
		return fromError(err)
	}
	results, err := c.pg.Exec(ctx, command).ReadAll()
	if err != nil {
		return fromError(err)
	}
	if len(results) == 0 {
		return &transaction.Result{Status: transaction.StatusEmptyQuery}
	}
	return fromResult(results[len(results)-1])
}

func (c *Conn) Send(command string) error {
	if err := c.endPipeline(); err != nil {
		return err
	}
	c.pipeline = c.pg.StartPipeline(context.Background())
	c.pipeline.SendQueryParams(command, nil, nil, nil, nil)
	if err := c.pipeline.Sync(); err != nil {
		c.endPipeline()
		return err
	}
	return nil
}

func (c *Conn) Collect(ctx context.Context) *transaction.Result {
	if c.pipeline == nil {
		return nil
	}
	results, err := c.pipeline.GetResults()
	if err != nil {
		c.endPipeline()
		return fromError(err)
	}
	switch r := results.(type) {
	case *pgconn.ResultReader:
		return fromResult(r.Read())
	case *pgconn.PipelineSync:
		// End of the results of the sent command.
		if err := c.endPipeline(); err != nil {
			return fromError(err)
		}
		return nil
	case nil:
		c.endPipeline()
		return nil
	}
	return &transaction.Result{Status: transaction.StatusFatalError, Message: fmt.Sprintf("unexpected pipeline result %T", results)}
}

func (c *Conn) Option(key string) string {
	switch key {
	case "host":
		return c.host
	case "port":
		return strconv.Itoa(c.port)
	}
	return c.pg.ParameterStatus(key)
}

var errConnClosed = errors.New("postgres connection is closed")

// Err reports whether pgconn closed the connection after a fatal error.
func (c *Conn) Err() error {
	if c.pg.IsClosed() {
		return errConnClosed
	}
	return nil
}

func (c *Conn) Close() error {
	c.endPipeline()
	return c.pg.Close(context.Background())
}
