package membership

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultWorkerPort is used for worker file lines without a port.
const DefaultWorkerPort = 5432

const maxWorkerFileLine = 1024

// ParseWorkerFile reads a worker list. Each line holds a node name and,
// optionally, a port and a rack, separated by whitespace. '#' starts a
// comment that runs to the end of the line.
func ParseWorkerFile(r io.Reader) ([]Node, error) {
	var nodes []Node
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxWorkerFileLine), maxWorkerFileLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 3 {
			return nil, fmt.Errorf("could not parse worker node line %d: %q: too many fields", lineNo, raw)
		}

		node := Node{Name: fields[0], Port: DefaultWorkerPort, Active: true}
		if len(fields) > 1 {
			port, err := strconv.Atoi(fields[1])
			if err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("could not parse worker node line %d: %q: port must be a positive number", lineNo, raw)
			}
			node.Port = port
		}
		if len(fields) > 2 {
			node.Rack = fields[2]
		}
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("worker node list line %d exceeds the maximum length of %d", lineNo+1, maxWorkerFileLine)
		}
		return nil, err
	}
	return nodes, nil
}

// LoadWorkerFile parses the worker list at path. A missing file yields no
// workers.
func LoadWorkerFile(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open worker list file %q: %w", path, err)
	}
	defer f.Close()
	return ParseWorkerFile(f)
}
