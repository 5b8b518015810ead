// Arvis Core - single-room automation assistant
//
// This is the main entry point for the Arvis event coordination layer.
// It wires the event bus, room state machine, presence tracking, scene
// engine, intent router, and hardware adapters together, and exposes the
// HTTP/WebSocket surface for dashboards and external voice services.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/arman-h/arvis-core/migrations"

	"github.com/arman-h/arvis-core/internal/api"
	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/hardware"
	"github.com/arman-h/arvis-core/internal/infrastructure/config"
	"github.com/arman-h/arvis-core/internal/infrastructure/database"
	"github.com/arman-h/arvis-core/internal/infrastructure/logging"
	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
	"github.com/arman-h/arvis-core/internal/intent"
	"github.com/arman-h/arvis-core/internal/presence"
	"github.com/arman-h/arvis-core/internal/scene"
	"github.com/arman-h/arvis-core/internal/state"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Arvis Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations (includes the seeded scene set on first boot)
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Event bus and room state machine
	eventBus := bus.New()
	eventBus.SetLogger(log)

	stateManager := state.NewManager(eventBus)
	stateManager.SetLogger(log)

	// Hardware adapters
	lights := hardware.NewLights(mqttClient, cfg.Hardware.LightID)
	lights.SetLogger(log)

	plugs := hardware.NewPlugs(mqttClient, cfg.Hardware.Plugs)
	plugs.SetLogger(log)

	speaker := hardware.NewSpeaker(mqttClient)
	speaker.SetLogger(log)

	// Scene engine
	sceneRegistry := scene.NewRegistry(scene.NewSQLiteRepository(db.DB))
	sceneRegistry.SetLogger(log)

	activator := scene.NewActivator(sceneRegistry, lights, speaker, eventBus)
	activator.SetLogger(log)

	// Presence tracking
	detector := presence.NewDetector(mqttClient, eventBus, cfg.Presence.MotionDebounce)
	detector.SetLogger(log)

	agent := presence.NewAgent(eventBus, stateManager, presence.AgentConfig{
		OccupancyTimeout: cfg.Presence.OccupancyTimeout,
		CheckInterval:    cfg.Presence.CheckInterval,
	})
	agent.SetLogger(log)

	// Load the scene cache and attach the MQTT-fed components in parallel;
	// they are independent and each just needs its subscription in place.
	g, loadCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if refreshErr := sceneRegistry.RefreshCache(loadCtx); refreshErr != nil {
			return fmt.Errorf("loading scenes: %w", refreshErr)
		}
		return nil
	})
	g.Go(func() error {
		if startErr := plugs.Start(ctx); startErr != nil {
			return fmt.Errorf("starting plug tracker: %w", startErr)
		}
		return nil
	})
	g.Go(func() error {
		if startErr := detector.Start(ctx); startErr != nil {
			return fmt.Errorf("starting motion detector: %w", startErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	defer func() {
		if stopErr := detector.Stop(); stopErr != nil {
			log.Error("error stopping motion detector", "error", stopErr)
		}
		if stopErr := plugs.Stop(); stopErr != nil {
			log.Error("error stopping plug tracker", "error", stopErr)
		}
	}()
	log.Info("scene registry initialised", "scenes", sceneRegistry.Count())
	log.Info("plug tracker started", "plugs", len(cfg.Hardware.Plugs))
	log.Info("motion detector started", "debounce", cfg.Presence.MotionDebounce)

	agent.Start(ctx)
	defer agent.Stop()
	log.Info("presence agent started", "occupancy_timeout", cfg.Presence.OccupancyTimeout)

	// Intent router with the full handler set. Presence notifications
	// are bound to the entry/exit scene handlers so an arrival plays the
	// welcome scene without a bespoke subscriber.
	router := intent.NewRouter(eventBus, &intent.Context{
		State:  stateManager,
		Bus:    eventBus,
		Lights: lights,
		Plugs:  plugs,
		Speech: speaker,
		Scenes: activator,
	})
	router.SetLogger(log)

	intent.RegisterLightHandlers(router)
	intent.RegisterDeviceHandlers(router)
	intent.RegisterPresenceHandlers(router)
	intent.RegisterChatHandlers(router)

	router.Start()
	defer router.Stop()
	router.BindEvent(presence.EventEntryDetected, "presence.entry")
	router.BindEvent(presence.EventExitDetected, "presence.exit")
	log.Info("intent router started", "actions", router.Actions())

	// HTTP/WebSocket surface. Speech-to-text runs as an external service
	// publishing voice.command over the bus bridge, so no in-process voice
	// pipeline is wired here and POST /voice/text reports unavailable.
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Bus:      eventBus,
		State:    stateManager,
		Scenes:   sceneRegistry,
		Activate: activator,
		Router:   router,
		Agent:    agent,
		Detector: detector,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"assistant", cfg.Assistant.Name,
		"room", cfg.Assistant.Room,
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Intent router, presence agent, detector, plug tracker
	// 3. MQTT
	// 4. Database

	log.Info("Arvis Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ARVIS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ARVIS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
