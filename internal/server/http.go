package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/zeusync/climber/internal/core/observability/log"
)

// Config of the debug feed listener.
type Config struct {
	Addr      string `json:"addr" yaml:"addr"`
	QueueSize int    `json:"queue_size" yaml:"queue_size"`
}

func DefaultConfig() Config {
	return Config{Addr: "127.0.0.1:8080", QueueSize: defaultQueueSize}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidConfig)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: negative queue size %d", ErrInvalidConfig, c.QueueSize)
	}
	return nil
}

// HTTPServer serves the snapshot feed:
//
//	/ws       websocket stream of frames
//	/snapshot latest frame as JSON
//	/healthz  liveness
type HTTPServer struct {
	cfg    Config
	hub    *Hub
	logger log.Log

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

func NewHTTPServer(cfg Config, hub *Hub, logger log.Log) *HTTPServer {
	if logger == nil {
		logger = log.Provide()
	}
	return &HTTPServer{cfg: cfg, hub: hub, logger: logger}
}

func (s *HTTPServer) Hub() *Hub { return s.hub }

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.hub.ServeHTTP(w, r)
	case "/snapshot":
		last := s.hub.Last()
		if last == nil {
			http.Error(w, "no snapshot recorded yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(last)
	case "/healthz":
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

// Start listens on the configured address and serves in the background.
func (s *HTTPServer) Start(_ context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.server = &http.Server{Handler: s}
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("feed server stopped", log.Error(err))
		}
	}(s.server, s.done)

	s.logger.Info("feed listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the hub and shuts the listener down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotRunning
	}

	s.hub.Close()
	err := srv.Shutdown(ctx)
	<-done
	return err
}
