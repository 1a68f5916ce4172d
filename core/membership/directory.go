// Package membership keeps the list of worker nodes the coordinator opens
// remote transactions on.
package membership

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

var (
	ErrNodeNotFound        = errors.New("node does not exist")
	ErrNodeAlreadyActive   = errors.New("node is already activated")
	ErrNodeAlreadyInactive = errors.New("node is already deactivated")
)

// Node is a registered worker.
type Node struct {
	ID     int
	Name   string
	Port   int
	Rack   string
	Active bool
}

func (n Node) Worker() transaction.Worker {
	return transaction.Worker{Name: n.Name, Port: n.Port}
}

// Directory is an in-memory worker registry. Active nodes are listed in the
// order they were added.
type Directory struct {
	mu     sync.RWMutex
	nodes  []*Node
	nextID int
}

var _ transaction.Directory = (*Directory)(nil)

func NewDirectory() *Directory {
	return &Directory{nextID: 1}
}

// NewStaticDirectory registers the given workers as active nodes.
func NewStaticDirectory(workers []transaction.Worker) *Directory {
	d := NewDirectory()
	for _, w := range workers {
		d.Add(w.Name, w.Port)
	}
	return d
}

func (d *Directory) find(name string, port int) *Node {
	for _, n := range d.nodes {
		if strings.EqualFold(n.Name, name) && n.Port == port {
			return n
		}
	}
	return nil
}

// Add registers an active node. Adding a node that already exists returns
// the existing node unchanged.
func (d *Directory) Add(name string, port int) Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n := d.find(name, port); n != nil {
		return *n
	}
	n := &Node{ID: d.nextID, Name: name, Port: port, Active: true}
	d.nextID++
	d.nodes = append(d.nodes, n)
	return *n
}

func (d *Directory) setActive(name string, port int, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.find(name, port)
	if n == nil {
		return fmt.Errorf("%s:%d: %w", name, port, ErrNodeNotFound)
	}
	if n.Active == active {
		if active {
			return fmt.Errorf("%s:%d: %w", name, port, ErrNodeAlreadyActive)
		}
		return fmt.Errorf("%s:%d: %w", name, port, ErrNodeAlreadyInactive)
	}
	n.Active = active
	return nil
}

// Activate includes a previously deactivated node in ListWorkers again.
func (d *Directory) Activate(name string, port int) error {
	return d.setActive(name, port, true)
}

// Deactivate excludes a node from ListWorkers.
func (d *Directory) Deactivate(name string, port int) error {
	return d.setActive(name, port, false)
}

// Replace swaps the registered nodes for the given ones. Nodes that stay
// keep their id and activation state; new nodes start active.
func (d *Directory) Replace(nodes []Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := make([]*Node, 0, len(nodes))
	for _, in := range nodes {
		n := &Node{Name: in.Name, Port: in.Port, Rack: in.Rack, Active: true}
		if old := d.find(in.Name, in.Port); old != nil {
			n.ID = old.ID
			n.Active = old.Active
		} else {
			n.ID = d.nextID
			d.nextID++
		}
		next = append(next, n)
	}
	d.nodes = next
}

// Nodes returns every registered node, active or not.
func (d *Directory) Nodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, *n)
	}
	return out
}

// ListWorkers returns the active workers in registration order.
func (d *Directory) ListWorkers() []transaction.Worker {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]transaction.Worker, 0, len(d.nodes))
	for _, n := range d.nodes {
		if n.Active {
			out = append(out, n.Worker())
		}
	}
	return out
}
