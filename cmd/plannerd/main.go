package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/catalog"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/grpc"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/logging"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/metrics"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/persistence"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/setup"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/database"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/pidfile"
)

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	fmt.Println("Planner Daemon v0.1.0")
	fmt.Println("=====================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(); killErr != nil {
			log.Fatalf("Failed to kill existing daemon: %v", killErr)
		}
		fmt.Println("Existing daemon killed")

		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}
	fmt.Println("PID file lock acquired")

	err := run(cfg)
	if releaseErr := pf.Release(); releaseErr != nil {
		log.Printf("Warning: failed to release PID file: %v", releaseErr)
	}
	if err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Logging
	logger, closeLog, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log output: %w", err)
	}
	defer closeLog()
	ctx := common.WithLogger(context.Background(), logger)

	// 2. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	fmt.Println("Database connected")

	catalogRepo := persistence.NewGormCatalogRepository(db)
	planRepo := persistence.NewGormPlanSnapshotRepository(db)

	// 3. Catalog source: the configured file wins over the stored catalog
	var source production.SnapshotSource = catalogRepo
	if cfg.Planner.Catalog != "" {
		source = catalog.NewFileProvider(cfg.Planner.Catalog)
		fmt.Printf("Catalog file: %s\n", cfg.Planner.Catalog)
	} else {
		fmt.Println("Catalog: database")
	}

	// 4. Metrics, registered before the engine so its first solve is recorded
	var middlewares []common.Middleware
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		plannerCollector := metrics.NewPlannerMetricsCollector()
		if err := plannerCollector.Register(); err != nil {
			return fmt.Errorf("failed to register planner metrics: %w", err)
		}
		metrics.SetGlobalPlannerCollector(plannerCollector)

		requestCollector := metrics.NewRequestMetricsCollector()
		if err := requestCollector.Register(); err != nil {
			return fmt.Errorf("failed to register request metrics: %w", err)
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(requestCollector))

		metricsServer = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		errCh := metricsServer.Start()
		go func() {
			if err := <-errCh; err != nil {
				logger.Log(common.LevelError, "Metrics server failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
		fmt.Printf("Metrics: http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 5. Planning engine and handlers
	engine, err := setup.NewPlanningEngineFromConfig(ctx, cfg.Planner, source)
	if err != nil {
		return fmt.Errorf("failed to build planning engine: %w", err)
	}

	registry := setup.NewHandlerRegistry(engine, planRepo, catalogRepo, nil)
	med, err := registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	// 6. Daemon server
	address := cfg.DaemonAddress()
	if socketPath, ok := strings.CutPrefix(address, "unix:"); ok {
		socketPath = strings.TrimPrefix(socketPath, "//")
		if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
			return fmt.Errorf("failed to create socket directory: %w", err)
		}
	}
	fmt.Printf("Starting daemon server on: %s\n", address)

	daemonServer, err := grpc.NewDaemonServer(med, address, grpc.ServerOptions{
		RateLimit:     cfg.Server.RateLimit.Requests,
		Burst:         cfg.Server.RateLimit.Burst,
		Timeout:       cfg.Server.Timeout,
		Logger:        logger,
		HandleSignals: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}

	fmt.Println("\n✓ Daemon is ready to accept connections")
	fmt.Println("Press Ctrl+C to stop")

	// Start serving (blocks until shutdown)
	serveErr := daemonServer.Start()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log(common.LevelWarn, "Metrics server shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if serveErr != nil {
		return fmt.Errorf("daemon server error: %w", serveErr)
	}

	fmt.Println("\nDaemon stopped")
	return nil
}
