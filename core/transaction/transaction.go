package transaction

import "fmt"

// State represents the protocol state of a remote transaction on one worker.
type State int

const (
	StateInvalid   State = iota
	StateOpen            // BEGIN acknowledged, commands may be applied
	StatePrepared        // PREPARE TRANSACTION acknowledged, waiting for the global decision
	StateCommitted       // COMMIT or COMMIT PREPARED acknowledged
	StateAborted         // ROLLBACK or ROLLBACK PREPARED acknowledged
	StateFailed          // a commit or abort step failed, the remote outcome is unknown
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StatePrepared:
		return "prepared"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// CommitProtocol selects how remote transactions are completed.
type CommitProtocol int

const (
	OnePhaseCommit CommitProtocol = iota
	TwoPhaseCommit
)

func (p CommitProtocol) String() string {
	if p == TwoPhaseCommit {
		return "two_phase"
	}
	return "one_phase"
}

// ParseCommitProtocol accepts "one_phase"/"1pc" and "two_phase"/"2pc".
func ParseCommitProtocol(s string) (CommitProtocol, error) {
	switch s {
	case "", "one_phase", "1pc":
		return OnePhaseCommit, nil
	case "two_phase", "2pc":
		return TwoPhaseCommit, nil
	}
	return OnePhaseCommit, fmt.Errorf("unknown commit protocol %q", s)
}

// Worker identifies a worker node by the name and port it accepts connections on.
type Worker struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (w Worker) Address() string {
	return fmt.Sprintf("%s:%d", w.Name, w.Port)
}

// RemoteTransaction pairs the connection to one worker with the state of the
// transaction opened on it. Handles are created by the connection set cache
// and are never shared between local transactions.
type RemoteTransaction struct {
	Conn    Conn
	State   State
	Node    Worker
	GroupID int
	// PreparedName is set once the handle was asked to prepare.
	PreparedName string
}

// ConnectionSet is the ordered list of remote transactions opened for one
// local transaction. The order is the membership order at build time.
type ConnectionSet struct {
	TxnID       string
	Handles     []*RemoteTransaction
	WorkerCount int
}

// Len returns the number of handles in the set. A nil set is empty.
func (s *ConnectionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Handles)
}
