// Package health serves the standard grpc.health.v1 service for the bridge.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// Service is the name probes use for the capture pipeline.
const Service = "screencapture.Bridge"

// ProbeInterval is how often the readiness check runs.
const ProbeInterval = 5 * time.Second

// Server wraps a gRPC server exposing health checks.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	ready  func() bool
}

// New creates a health server. ready reports whether captures can run;
// nil means always ready.
func New(ready func() bool) *Server {
	s := &Server{
		grpc: grpc.NewServer(
			grpc.ChainUnaryInterceptor(trace.UnaryServerInterceptor()),
			grpc.ChainStreamInterceptor(trace.StreamServerInterceptor()),
		),
		health: health.NewServer(),
		ready:  ready,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.refresh()
	return s
}

// refresh publishes the current readiness for the overall server and Service.
func (s *Server) refresh() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ready != nil && !s.ready() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(Service, status)
}

// Serve accepts connections on lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	slog.Info("health server listening", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(ProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}
