// Package workerhealth exposes worker liveness over the standard gRPC health
// service and lets the coordinator query it.
package workerhealth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name a worker reports under.
const ServiceName = "gojodb.worker"

// Server serves the health service of one worker.
type Server struct {
	logger *zap.Logger
	grpc   *grpc.Server
	health *health.Server
	wg     sync.WaitGroup
}

// NewServer creates a health server. Every service starts NOT_SERVING until
// SetServing is called.
func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger: logger.Named("health"),
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	s.SetServing(false)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	return s
}

// Listen binds addr and serves in the background. It returns the bound
// address.
func (s *Server) Listen(addr string) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("Health server failed", zap.Error(err))
		}
	}()
	s.logger.Info("Health server listening", zap.String("addr", lis.Addr().String()))
	return lis.Addr(), nil
}

// SetServing sets the status of the worker service and of the server as a
// whole.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Close reports NOT_SERVING to watchers and stops the server.
func (s *Server) Close() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.wg.Wait()
}

// Check asks the worker health service at addr for its status.
func Check(ctx context.Context, addr string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", addr, err)
	}
	return resp.GetStatus(), nil
}

// Serving reports whether the worker at addr answers SERVING.
func Serving(ctx context.Context, addr string) bool {
	status, err := Check(ctx, addr)
	return err == nil && status == healthpb.HealthCheckResponse_SERVING
}
