package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the empty overall service.
const ServiceName = "recruitbot"

const defaultStatusInterval = 5 * time.Second

// GRPCHealth serves grpc.health.v1 with a status that follows the gateway.
type GRPCHealth struct {
	listener net.Listener
	server   *grpc.Server
	health   *health.Server
	gateway  Readiness
	interval time.Duration
}

// NewGRPCHealth listens on addr. A nil gateway is always serving.
func NewGRPCHealth(addr string, gateway Readiness) (*GRPCHealth, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	g := &GRPCHealth{
		listener: listener,
		server:   grpcServer,
		health:   healthServer,
		gateway:  gateway,
		interval: defaultStatusInterval,
	}
	g.refresh()
	return g, nil
}

// Addr returns the listener address.
func (g *GRPCHealth) Addr() string {
	return g.listener.Addr().String()
}

func (g *GRPCHealth) refresh() {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if g.gateway != nil && !g.gateway.Ready() {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
}

// Serve runs the gRPC server until ctx is done.
func (g *GRPCHealth) Serve(ctx context.Context) error {
	slog.Info("gRPC health server listening", "addr", g.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- g.server.Serve(g.listener)
	}()

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.refresh()
		case <-ctx.Done():
			g.health.Shutdown()
			g.server.GracefulStop()
			err := <-serveErr
			if err == nil || errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serve gRPC: %w", err)
		case err := <-serveErr:
			if err == nil || errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serve gRPC: %w", err)
		}
	}
}
