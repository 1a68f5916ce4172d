package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/config"
	"github.com/sushant-115/gojodb-coordinator/core/coordinator"
	"github.com/sushant-115/gojodb-coordinator/core/localtxn"
	"github.com/sushant-115/gojodb-coordinator/core/membership"
	"github.com/sushant-115/gojodb-coordinator/core/transaction"
	"github.com/sushant-115/gojodb-coordinator/core/twophase"
	internaltelemetry "github.com/sushant-115/gojodb-coordinator/internal/telemetry"
	"github.com/sushant-115/gojodb-coordinator/pkg/connection"
	"github.com/sushant-115/gojodb-coordinator/pkg/lineproto"
	"github.com/sushant-115/gojodb-coordinator/pkg/logger"
	"github.com/sushant-115/gojodb-coordinator/pkg/telemetry"
	"github.com/sushant-115/gojodb-coordinator/pkg/txnlog"
	"github.com/sushant-115/gojodb-coordinator/pkg/workerhealth"
)

var (
	configPath  = flag.String("config", "", "Path to the coordinator YAML config")
	protocol    = flag.String("commit_protocol", "", "Override the commit protocol (one_phase or two_phase)")
	workerFile  = flag.String("worker_file", "", "Override the worker list file")
	historyFile = flag.String("history_file", "/tmp/gojodb_coordinator.history", "Shell history file")
)

// shell holds the state of the interactive session.
type shell struct {
	cfg      config.Config
	logger   *zap.Logger
	txns     *localtxn.Manager
	coord    *coordinator.Coordinator
	dir      *membership.Directory
	settings *coordinator.Settings
	records  *txnlog.Log
	out      io.Writer
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if *protocol != "" {
		cfg.CommitProtocol = *protocol
	}
	if *workerFile != "" {
		cfg.WorkerFile = *workerFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logger, "gojodb-coordinator")
	if err != nil {
		log.Fatalf("FATAL: failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		zlog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer tel.Shutdown(context.Background())

	metrics, err := internaltelemetry.NewCoordinatorMetrics(tel.Meter)
	if err != nil {
		zlog.Fatal("Failed to create coordinator metrics", zap.Error(err))
	}

	dir := membership.NewStaticDirectory(cfg.Workers)
	if cfg.WorkerFile != "" {
		if cfg.WatchWorkerFile {
			err = membership.WatchFile(ctx, cfg.WorkerFile, dir, zlog)
		} else {
			var nodes []membership.Node
			if nodes, err = membership.LoadWorkerFile(cfg.WorkerFile); err == nil {
				dir.Replace(nodes)
			}
		}
		if err != nil {
			zlog.Fatal("Failed to load worker list", zap.String("path", cfg.WorkerFile), zap.Error(err))
		}
	}

	dial := connection.DialFunc(lineproto.Dial)
	if cfg.Driver == config.DriverPostgres {
		dial = cfg.Postgres.Dialer()
	}
	conns := connection.NewManager(dial, cfg.DialTimeout, zlog)
	defer conns.Close()

	var records *txnlog.Log
	var recorder transaction.PreparedRecorder
	if cfg.TxnLogPath != "" {
		records, err = txnlog.Open(cfg.TxnLogPath, zlog)
		if err != nil {
			zlog.Fatal("Failed to open transaction log", zap.Error(err))
		}
		defer records.Close()
		recorder = records
	}

	mode, _ := transaction.ParseCommitProtocol(cfg.CommitProtocol)
	settings := coordinator.NewSettings(mode)
	txns := localtxn.NewManager(zlog)
	coord := coordinator.New(txns, coordinator.Options{
		Directory: dir,
		Connector: conns,
		Engine:    twophase.NewEngine(zlog),
		Recorder:  recorder,
		Settings:  settings,
		Logger:    zlog,
		Metrics:   metrics,
		Tracer:    tel.Tracer,
	})

	sh := &shell{cfg: cfg, logger: zlog, txns: txns, coord: coord, dir: dir, settings: settings, records: records, out: os.Stdout}
	sh.loop(ctx)

	if txn := txns.Current(); txn != nil {
		txn.Rollback(context.Background())
	}
}

func (s *shell) loop(ctx context.Context) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            "gojodb> ",
		HistoryFile:       *historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		s.logger.Fatal("Failed to start shell", zap.Error(err))
	}
	defer l.Close()

	fmt.Fprintln(s.out, "Commands: begin, inorder <sql>, parallel <sql>, commit, rollback, workers, prepared, protocol [one_phase|two_phase], health <host:port>, exit")
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return
			}
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		if err := s.run(ctx, line); err != nil {
			fmt.Fprintf(s.out, "ERROR: %v\n", err)
		}
	}
}

func (s *shell) run(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "begin":
		txn, err := s.txns.Begin()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "BEGIN %s\n", txn.ID())
	case "inorder", "parallel":
		if arg == "" {
			return fmt.Errorf("%s requires a command", cmd)
		}
		send := s.coord.SendCommandToWorkersInOrder
		if cmd == "parallel" {
			send = s.coord.SendCommandToWorkersInParallel
		}
		if err := send(ctx, arg); err != nil {
			fmt.Fprintln(s.out, "ROLLBACK")
			return err
		}
		fmt.Fprintf(s.out, "OK on %d workers\n", s.coord.ConnectionSet().Len())
	case "commit":
		txn := s.txns.Current()
		if txn == nil {
			return coordinator.ErrNoLocalTransaction
		}
		err := txn.Commit(ctx)
		fmt.Fprintln(s.out, strings.ToUpper(txn.Status().String()))
		return err
	case "rollback":
		txn := s.txns.Current()
		if txn == nil {
			return coordinator.ErrNoLocalTransaction
		}
		err := txn.Rollback(ctx)
		fmt.Fprintln(s.out, "ROLLBACK")
		return err
	case "workers":
		for _, n := range s.dir.Nodes() {
			fmt.Fprintf(s.out, "%d\t%s:%d\tactive=%v\n", n.ID, n.Name, n.Port, n.Active)
		}
	case "protocol":
		if arg != "" {
			p, err := transaction.ParseCommitProtocol(arg)
			if err != nil {
				return err
			}
			// Takes effect at the next pre-commit.
			s.settings.SetCommitProtocol(p)
		}
		fmt.Fprintln(s.out, s.settings.CommitProtocol())
	case "health":
		if arg == "" {
			return fmt.Errorf("health requires the worker health address")
		}
		status, err := workerhealth.Check(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, status)
	case "prepared":
		if s.records == nil {
			return fmt.Errorf("transaction record log is disabled")
		}
		recs, err := s.records.List()
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintf(s.out, "%s\t%s:%d\t%s\n", r.TxnID, r.Node, r.Port, r.PreparedName)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
