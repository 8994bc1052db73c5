// Package grpc runs the operational gRPC endpoint: the standard health
// service, backed by a database ping, plus server reflection.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported by the health service next to the overall status.
const ServiceName = "guestgallery.Gallery"

const defaultCheckInterval = 15 * time.Second

// Pinger reports database liveness; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	db       Pinger
	logger   logging.Logger
	health   *health.Server
	interval time.Duration
	timeout  time.Duration
}

func NewGRPCServer(a string, l logging.Logger, db Pinger, pingTimeout time.Duration) *GRPCServer {
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}
	return &GRPCServer{
		address:  a,
		db:       db,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
		interval: defaultCheckInterval,
		timeout:  pingTimeout,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

// refresh pings the database and publishes the result for both the overall
// server and ServiceName.
func (s *GRPCServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db == nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
