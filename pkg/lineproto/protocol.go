// Package lineproto implements the gojodb worker text protocol.
//
// The coordinator writes one command per line. A worker answers every
// command with one or more result lines followed by a READY line:
//
//	COMMAND_OK <tag>
//	TUPLES_OK <rows>
//	ERROR <code> <message>
//	READY
package lineproto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
)

const (
	statusCommandOK = "COMMAND_OK"
	statusTuplesOK  = "TUPLES_OK"
	statusError     = "ERROR"
	statusReady     = "READY"
)

// encodeCommand flattens a command onto a single line.
func encodeCommand(command string) string {
	r := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return r.Replace(command) + "\n"
}

// encodeResult renders a result as a response line.
func encodeResult(res *transaction.Result) string {
	switch res.Status {
	case transaction.StatusCommandOK:
		return fmt.Sprintf("%s %s\n", statusCommandOK, res.CommandTag)
	case transaction.StatusTuplesOK:
		return fmt.Sprintf("%s %d\n", statusTuplesOK, res.Rows)
	default:
		code := res.Code
		if code == "" {
			code = "XX000"
		}
		return fmt.Sprintf("%s %s %s\n", statusError, code, res.Message)
	}
}

// decodeResult parses a response line. It returns nil for READY.
func decodeResult(line string) (*transaction.Result, error) {
	line = strings.TrimRight(line, "\r\n")
	status, rest, _ := strings.Cut(line, " ")
	switch status {
	case statusReady:
		return nil, nil
	case statusCommandOK:
		return &transaction.Result{Status: transaction.StatusCommandOK, CommandTag: rest}, nil
	case statusTuplesOK:
		rows, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("invalid row count in %q: %w", line, err)
		}
		return &transaction.Result{Status: transaction.StatusTuplesOK, Rows: rows}, nil
	case statusError:
		code, msg, _ := strings.Cut(rest, " ")
		return &transaction.Result{Status: transaction.StatusFatalError, Code: code, Message: msg}, nil
	}
	return nil, fmt.Errorf("unexpected response line %q", line)
}
