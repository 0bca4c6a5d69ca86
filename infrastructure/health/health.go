// Package health exposes the standard gRPC health service on the admin port,
// for orchestrators that probe over gRPC rather than HTTP.
package health

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported for the hub itself; the empty name reports the whole server.
const Service = "taskhub.Hub"

type Server struct {
	log    *slog.Logger
	grpc   *grpc.Server
	health *grpchealth.Server
}

// New starts in NOT_SERVING until SetServing is called.
func New(log *slog.Logger) *Server {
	s := &Server{log: log, grpc: grpc.NewServer(), health: grpchealth.NewServer()}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)
	return s
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(Service, status)
	s.log.Debug("Health status changed", "status", status.String())
}

// Serve blocks until Stop is called.
func (s *Server) Serve(listener net.Listener) error {
	s.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	err := s.grpc.Serve(listener)
	if err == grpc.ErrServerStopped {
		return nil
	}
	return err
}

// Stop reports NOT_SERVING to watchers and then stops the server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
