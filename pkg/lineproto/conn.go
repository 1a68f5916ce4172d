package lineproto

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

// Conn is a client connection to a line protocol worker. It is not safe for
// concurrent use.
type Conn struct {
	conn    net.Conn
	reader  *bufio.Reader
	host    string
	port    int
	pending bool // results of a sent command have not been drained
	broken  error
}

var _ transaction.Conn = (*Conn)(nil)

// Dial connects to the worker at name:port.
func Dial(ctx context.Context, name string, port int) (transaction.Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", net.JoinHostPort(name, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return NewConn(nc, name, port), nil
}

// NewConn wraps an established network connection.
func NewConn(nc net.Conn, host string, port int) *Conn {
	return &Conn{
		conn:   nc,
		reader: bufio.NewReader(nc),
		host:   host,
		port:   port,
	}
}

func (c *Conn) setDeadline(ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(dl)
		return
	}
	c.conn.SetDeadline(time.Time{})
}

func (c *Conn) fail(err error) *transaction.Result {
	if c.broken == nil {
		c.broken = err
	}
	return &transaction.Result{Status: transaction.StatusFatalError, Message: err.Error()}
}

func (c *Conn) write(command string) error {
	if c.broken != nil {
		return fmt.Errorf("connection is broken: %w", c.broken)
	}
	if _, err := c.conn.Write([]byte(encodeCommand(command))); err != nil {
		c.broken = err
		return err
	}
	return nil
}

func (c *Conn) readResult() (*transaction.Result, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return decodeResult(line)
}

// drain discards results left over from an earlier Send.
func (c *Conn) drain() error {
	for c.pending {
		res, err := c.readResult()
		if err != nil {
			return err
		}
		if res == nil {
			c.pending = false
		}
	}
	return nil
}

// Exec sends the command and returns its last result.
func (c *Conn) Exec(ctx context.Context, command string) *transaction.Result {
	c.setDeadline(ctx)
	if err := c.drain(); err != nil {
		return c.fail(err)
	}
	if err := c.write(command); err != nil {
		return c.fail(err)
	}

	var last *transaction.Result
	for {
		res, err := c.readResult()
		if err != nil {
			return c.fail(err)
		}
		if res == nil {
			return last
		}
		last = res
	}
}

// Send writes the command without waiting for a response.
func (c *Conn) Send(command string) error {
	c.conn.SetDeadline(time.Time{})
	if err := c.drain(); err != nil {
		c.broken = err
		return err
	}
	if err := c.write(command); err != nil {
		return err
	}
	c.pending = true
	return nil
}

// Collect reads the next result of the last sent command, or returns nil
// once the worker reported READY.
func (c *Conn) Collect(ctx context.Context) *transaction.Result {
	if !c.pending {
		return nil
	}
	c.setDeadline(ctx)
	res, err := c.readResult()
	if err != nil {
		c.pending = false
		return c.fail(err)
	}
	if res == nil {
		c.pending = false
	}
	return res
}

// Option reports the connection parameters "host" and "port".
func (c *Conn) Option(key string) string {
	switch key {
	case "host":
		return c.host
	case "port":
		return strconv.Itoa(c.port)
	}
	return ""
}

// Err returns the I/O error that broke the connection, or nil while it is
// usable.
func (c *Conn) Err() error {
	return c.broken
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
