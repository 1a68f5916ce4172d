// Package config loads the coordinator configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	"github.com/sushant-115/gojodb-coordinator/pkg/logger"
	"github.com/sushant-115/gojodb-coordinator/pkg/pgworker"
	"github.com/sushant-115/gojodb-coordinator/pkg/telemetry"
)

const (
	DriverLine     = "line"
	DriverPostgres = "postgres"
)

// Config is the coordinator configuration.
type Config struct {
	Logger    logger.Config    `yaml:"logger"`
	Telemetry telemetry.Config `yaml:"telemetry"`

	// CommitProtocol is "one_phase" or "two_phase".
	CommitProtocol string `yaml:"commit_protocol"`

	// Driver selects how workers are spoken to: "line" or "postgres".
	Driver   string          `yaml:"driver"`
	Postgres pgworker.Config `yaml:"postgres"`

	// Workers is a static worker list. WorkerFile, if set, takes
	// precedence and may be watched for changes.
	Workers         []transaction.Worker `yaml:"workers"`
	WorkerFile      string               `yaml:"worker_file"`
	WatchWorkerFile bool                 `yaml:"watch_worker_file"`

	DialTimeout time.Duration `yaml:"dial_timeout"`

	// TxnLogPath is the BoltDB file recording prepared transactions.
	// Empty disables the record log.
	TxnLogPath string `yaml:"txn_log_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logger:         logger.Config{Level: "info", Format: "console", OutputFile: "stderr"},
		Telemetry:      telemetry.Config{ServiceName: "gojodb-coordinator"},
		CommitProtocol: "two_phase",
		Driver:         DriverLine,
		DialTimeout:    2 * time.Second,
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := transaction.ParseCommitProtocol(c.CommitProtocol); err != nil {
		return err
	}
	switch c.Driver {
	case DriverLine, DriverPostgres:
	default:
		return fmt.Errorf("unknown worker driver %q", c.Driver)
	}
	for _, w := range c.Workers {
		if w.Name == "" || w.Port <= 0 {
			return fmt.Errorf("invalid worker %q:%d", w.Name, w.Port)
		}
	}
	return nil
}
