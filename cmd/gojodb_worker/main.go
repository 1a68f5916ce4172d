package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sushant-115/gojodb-coordinator/pkg/lineproto"
	"github.com/sushant-115/gojodb-coordinator/pkg/logger"
	"github.com/sushant-115/gojodb-coordinator/pkg/workerhealth"
)

var (
	listenAddr = flag.String("addr", "127.0.0.1:6432", "Address the worker listens on")
	logLevel   = flag.String("log_level", "info", "Log level")
	logFormat  = flag.String("log_format", "json", "Log format: json or console")
	healthAddr = flag.String("health_addr", "127.0.0.1:6433", "Address of the gRPC health service (empty disables it)")
	reject     = flag.String("reject", "", "Reject every command containing this text (fault injection)")
)

func main() {
	flag.Parse()

	zlog, err := logger.New(logger.Config{Level: *logLevel, Format: *logFormat}, "gojodb-worker")
	if err != nil {
		log.Fatalf("FATAL: failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := lineproto.NewServer(zlog)
	if *reject != "" {
		srv.Reject(*reject)
	}
	addr, err := srv.Listen(*listenAddr)
	if err != nil {
		zlog.Fatal("Failed to listen", zap.String("addr", *listenAddr), zap.Error(err))
	}
	zlog.Info("Worker listening", zap.String("addr", addr.String()))

	var hs *workerhealth.Server
	if *healthAddr != "" {
		hs = workerhealth.NewServer(zlog)
		if _, err := hs.Listen(*healthAddr); err != nil {
			zlog.Fatal("Failed to listen for health checks", zap.String("addr", *healthAddr), zap.Error(err))
		}
		hs.SetServing(true)
	}

	<-ctx.Done()
	zlog.Info("Shutting down worker")
	if hs != nil {
		hs.Close()
	}
	if err := srv.Close(); err != nil {
		zlog.Warn("Error closing worker", zap.Error(err))
	}
	zlog.Info("Worker stopped", zap.Int("applied", len(srv.Applied())), zap.Strings("prepared", srv.Prepared()))
}
