// Package logger builds the zap logger shared by the coordinator and worker
// commands.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the logger settings of a command.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
	// OutputFile is a path, or "stdout"/"stderr".
	OutputFile string `yaml:"output_file"`
}

// New creates a logger tagged with the given service name. Unknown levels
// fall back to info.
func New(config Config, service string) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}
	}

	ws, err := writeSyncer(config.OutputFile)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder(config.Format), ws, level)
	return zap.New(core, zap.AddCaller()).With(zap.String("service", service)), nil
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.EqualFold(format, "console") {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func writeSyncer(outputFile string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(outputFile) {
	case "", "stderr":
		// stdout belongs to the interactive shell.
		return zapcore.Lock(zapcore.AddSync(os.Stderr)), nil
	case "stdout":
		return zapcore.Lock(zapcore.AddSync(os.Stdout)), nil
	}
	file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", outputFile, err)
	}
	return zapcore.AddSync(file), nil
}
