package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/infrastructure/config"
	"github.com/arman-h/arvis-core/internal/infrastructure/logging"
	"github.com/arman-h/arvis-core/internal/intent"
	"github.com/arman-h/arvis-core/internal/presence"
	"github.com/arman-h/arvis-core/internal/scene"
	"github.com/arman-h/arvis-core/internal/state"
	"github.com/arman-h/arvis-core/internal/voice"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Bus      *bus.Bus
	State    *state.Manager
	Scenes   *scene.Registry
	Activate *scene.Activator
	Router   *intent.Router
	Agent    *presence.Agent
	Detector *presence.Detector
	Voice    *voice.Pipeline // optional; text commands 503 when absent
	Version  string
}

// Server is the HTTP API server for Arvis.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	logger   *logging.Logger
	bus      *bus.Bus
	state    *state.Manager
	scenes   *scene.Registry
	activate *scene.Activator
	router   *intent.Router
	agent    *presence.Agent
	detector *presence.Detector
	voice    *voice.Pipeline
	version  string

	server *http.Server
	hub    *Hub
	busSub bus.Subscription
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("state manager is required")
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		logger:   deps.Logger,
		bus:      deps.Bus,
		state:    deps.State,
		scenes:   deps.Scenes,
		activate: deps.Activate,
		router:   deps.Router,
		agent:    deps.Agent,
		detector: deps.Detector,
		voice:    deps.Voice,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, bridges bus events
// into the hub, and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Relay every bus event into the hub; clients pick channels.
	s.busSub = s.bus.Subscribe("*", func(_ context.Context, evt bus.Event) error {
		s.hub.Broadcast(evt.Type, map[string]any{
			"id":        evt.ID,
			"type":      evt.Type,
			"source":    evt.Source,
			"timestamp": evt.Timestamp.UTC().Format(time.RFC3339),
			"payload":   evt.Payload,
		})
		return nil
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.bus.Unsubscribe(s.busSub)

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
