package transaction

// Event is a point in the lifecycle of the local transaction.
type Event int

const (
	EventCommit Event = iota
	EventAbort
	EventPrepare
	EventPreCommit
	EventPrePrepare
)

func (e Event) String() string {
	switch e {
	case EventCommit:
		return "COMMIT"
	case EventAbort:
		return "ABORT"
	case EventPrepare:
		return "PREPARE"
	case EventPreCommit:
		return "PRE_COMMIT"
	case EventPrePrepare:
		return "PRE_PREPARE"
	}
	return "UNKNOWN"
}

// Terminal reports whether the event ends the local transaction.
func (e Event) Terminal() bool {
	return e == EventCommit || e == EventAbort
}
