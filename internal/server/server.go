// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/itsatony/w4b_v3/server/sensorbridge/api"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/database"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository/files"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository/postgres"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository/redisstore"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	service    *service.Service
	monitoring *monitoring.Service
	closers    []func() error
}

// New wires the service and its repositories and creates the HTTP server
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:     cfg,
		monitoring: monitoring.NewService(),
	}

	svc, err := s.initializeService()
	if err != nil {
		return nil, err
	}
	s.service = svc
	if err := s.setupEventHandlers(); err != nil {
		return nil, err
	}

	s.srv = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      api.NewRouter(s.service, s.monitoring).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return s.waitForShutdown(errCh)
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
	}

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.close()
	if err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			nuts.L.Warnf("[Server] Error during cleanup: %v", err)
		}
	}
}

func (s *Server) setupEventHandlers() error {
	verbose := strings.EqualFold(s.config.Monitoring.LogLevel, "debug")
	events := []string{
		service.EventReadingSaved,
		service.EventReadingFailed,
		service.EventReadingsListed,
		service.EventReadingsListFailed,
		service.EventFallbackAppended,
		service.EventFallbackFailed,
		service.EventConnectionChecked,
		service.EventConnectionCheckFail,
	}
	for _, event := range events {
		event := event
		err := s.service.OnEvent(event, func(labels map[string]string) {
			if verbose {
				nuts.L.Infof("[Events] %s %v", event, labels)
			}
			s.monitoring.RecordEvent(event, labels)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// initializeService creates the provisioner, repositories and the service
func (s *Server) initializeService() (*service.Service, error) {
	cfg := s.config

	connections := database.NewProvisioner(cfg.Database, cfg.SSH)
	if cfg.SSH.Enabled {
		nuts.L.Infof("[Server] Database connections go through SSH tunnel %s", cfg.SSH.Addr())
	}

	fallback, err := s.initFallback()
	if err != nil {
		return nil, err
	}

	svc := service.New(
		postgres.NewSensorReadingRepository(connections),
		fallback,
		connections,
	)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Server) initFallback() (repository.FallbackRepository, error) {
	cfg := s.config
	switch cfg.Fallback.Backend {
	case config.FallbackRedis:
		repo := redisstore.NewFallbackRepository(cfg.Redis)
		s.closers = append(s.closers, repo.Close)
		nuts.L.Infof("[Server] Fallback payloads go to redis list %s", cfg.Redis.Key)
		return repo, nil
	case config.FallbackFile, "":
		nuts.L.Infof("[Server] Fallback payloads go to %s", cfg.Fallback.FilePath)
		return files.NewFallbackRepository(cfg.Fallback.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown fallback backend %q", cfg.Fallback.Backend)
	}
}
