package transaction

// ResultStatus classifies the outcome of one command on a worker.
type ResultStatus int

const (
	StatusEmptyQuery ResultStatus = iota
	StatusCommandOK
	StatusTuplesOK
	StatusFatalError
)

func (s ResultStatus) String() string {
	switch s {
	case StatusEmptyQuery:
		return "EMPTY_QUERY"
	case StatusCommandOK:
		return "COMMAND_OK"
	case StatusTuplesOK:
		return "TUPLES_OK"
	default:
		return "FATAL_ERROR"
	}
}

// Result is the outcome of one command as reported by a worker.
type Result struct {
	Status     ResultStatus
	CommandTag string
	Rows       int
	Code       string // remote error code, if any
	Message    string // remote error message, if any
	Detail     string
}

// OK reports whether the command completed without returning rows. A nil
// result, which marks the end of a response stream, is never OK.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusCommandOK
}

// ErrorDetail renders the remote error for diagnostics.
func (r *Result) ErrorDetail() string {
	if r == nil {
		return "no result received"
	}
	switch r.Status {
	case StatusFatalError:
		msg := r.Message
		if r.Code != "" {
			msg = r.Code + ": " + msg
		}
		if r.Detail != "" {
			msg += " (" + r.Detail + ")"
		}
		return msg
	case StatusTuplesOK:
		return "unexpected row-returning result"
	case StatusEmptyQuery:
		return "empty query"
	}
	return ""
}
