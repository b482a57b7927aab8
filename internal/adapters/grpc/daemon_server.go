package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
)

// ServerOptions configures the planner daemon
type ServerOptions struct {
	RateLimit     int           // requests per second, 0 disables limiting
	Burst         int           // token bucket size
	Timeout       time.Duration // per-call deadline, 0 disables it
	Logger        common.Logger // request logger, no-op when nil
	HandleSignals bool          // stop on SIGINT/SIGTERM
}

// DaemonServer serves the planner gRPC service.
// Solves are dispatched through the mediator, so the engine is shared by every caller.
type DaemonServer struct {
	mediator   common.Mediator
	listener   net.Listener
	grpcServer *grpc.Server
	socketPath string
	logger     common.Logger
	signals    bool

	// Shutdown coordination
	shutdownChan chan os.Signal
	done         chan struct{}
	stopOnce     sync.Once
}

// Listen opens the daemon listener. Addresses prefixed with "unix:" are
// Unix domain sockets restricted to the owner, anything else is TCP.
func Listen(address string) (net.Listener, string, error) {
	if socketPath, ok := strings.CutPrefix(address, "unix:"); ok {
		socketPath = strings.TrimPrefix(socketPath, "//")
		// Remove a stale socket left by a crashed daemon
		if err := os.RemoveAll(socketPath); err != nil {
			return nil, "", fmt.Errorf("failed to remove existing socket: %w", err)
		}

		listener, err := net.Listen("unix", socketPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create unix socket listener: %w", err)
		}

		if err := os.Chmod(socketPath, 0600); err != nil {
			listener.Close()
			return nil, "", fmt.Errorf("failed to set socket permissions: %w", err)
		}
		return listener, socketPath, nil
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, "", fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return listener, "", nil
}

// NewDaemonServer creates a daemon listening on address
func NewDaemonServer(mediator common.Mediator, address string, opts ServerOptions) (*DaemonServer, error) {
	listener, socketPath, err := Listen(address)
	if err != nil {
		return nil, err
	}
	server := NewDaemonServerWithListener(mediator, listener, opts)
	server.socketPath = socketPath
	return server, nil
}

// NewDaemonServerWithListener creates a daemon on an already open listener
func NewDaemonServerWithListener(mediator common.Mediator, listener net.Listener, opts ServerOptions) *DaemonServer {
	logger := opts.Logger
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}

	interceptors := []grpc.UnaryServerInterceptor{LoggerInterceptor(logger)}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		interceptors = append(interceptors, RateLimitInterceptor(NewRateLimiter(opts.RateLimit, burst)))
	}
	if opts.Timeout > 0 {
		interceptors = append(interceptors, TimeoutInterceptor(opts.Timeout))
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterPlannerServer(grpcServer, newPlannerServiceImpl(mediator))

	return &DaemonServer{
		mediator:     mediator,
		listener:     listener,
		grpcServer:   grpcServer,
		logger:       logger,
		signals:      opts.HandleSignals,
		shutdownChan: make(chan os.Signal, 1),
		done:         make(chan struct{}),
	}
}

// Addr returns the address the daemon is listening on
func (s *DaemonServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Start serves gRPC requests until Stop is called, a shutdown signal
// arrives, or the server fails
func (s *DaemonServer) Start() error {
	s.logger.Log(common.LevelInfo, "Planner daemon listening", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})

	if s.signals {
		signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(s.shutdownChan)
		go s.handleShutdown()
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-s.done:
		s.logger.Log(common.LevelInfo, "Initiating graceful shutdown of gRPC server", nil)
		s.grpcServer.GracefulStop()
		if s.socketPath != "" {
			os.Remove(s.socketPath)
		}
		return nil
	}
}

// Stop asks a running daemon to shut down gracefully
func (s *DaemonServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// handleShutdown waits for a termination signal
func (s *DaemonServer) handleShutdown() {
	select {
	case sig := <-s.shutdownChan:
		s.logger.Log(common.LevelInfo, "Shutdown signal received, stopping daemon", map[string]interface{}{
			"signal": sig.String(),
		})
		s.Stop()
	case <-s.done:
	}
}
