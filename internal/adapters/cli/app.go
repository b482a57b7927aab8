package cli

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/catalog"
	grpcAdapter "github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/grpc"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/logging"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/persistence"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/setup"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/database"
)

// app holds the per-invocation wiring shared by the commands
type app struct {
	cfg      *config.Config
	logger   common.Logger
	closeLog func() error
	db       *gorm.DB
}

// newApp loads configuration and logging. The database is opened lazily.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if configPath != "" {
			return nil, err
		}
		cfg = config.LoadConfigOrDefault("")
	}

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	logger, closeLog, err := logging.NewFromConfig(logCfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

// context returns a background context carrying the CLI logger
func (a *app) context() context.Context {
	return common.WithLogger(context.Background(), a.logger)
}

// database opens and migrates the configured database on first use
func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(&a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	return db, nil
}

// catalogFile resolves the catalog file: --catalog, then planner.catalog, then the user default
func (a *app) catalogFile() string {
	if catalogPath != "" {
		return catalogPath
	}
	if a.cfg.Planner.Catalog != "" {
		return a.cfg.Planner.Catalog
	}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := handler.Load(); err == nil {
			return userCfg.DefaultCatalog
		}
	}
	return ""
}

// catalogSource returns the file provider when a catalog file is known, else the database catalog
func (a *app) catalogSource() (production.SnapshotSource, error) {
	if path := a.catalogFile(); path != "" {
		return catalog.NewFileProvider(path), nil
	}
	db, err := a.database()
	if err != nil {
		return nil, fmt.Errorf("no catalog file given and %w", err)
	}
	return persistence.NewGormCatalogRepository(db), nil
}

// mediator builds the engine and every handler. Plan storage is wired only when withStorage is set.
func (a *app) mediator(ctx context.Context, withStorage bool) (common.Mediator, error) {
	source, err := a.catalogSource()
	if err != nil {
		return nil, err
	}
	engine, err := setup.NewPlanningEngineFromConfig(ctx, a.cfg.Planner, source)
	if err != nil {
		return nil, err
	}

	registry := setup.NewHandlerRegistry(engine, nil, nil, nil)
	if withStorage {
		db, err := a.database()
		if err != nil {
			return nil, err
		}
		registry = setup.NewHandlerRegistry(
			engine,
			persistence.NewGormPlanSnapshotRepository(db),
			persistence.NewGormCatalogRepository(db),
			nil,
		)
	}
	return registry.CreateConfiguredMediator()
}

// plannerClient returns a daemon client with --daemon, else an in-process client
func (a *app) plannerClient(ctx context.Context, withStorage bool) (grpcAdapter.PlannerClient, error) {
	if useDaemon {
		address := daemonAddr
		if address == "" {
			address = a.cfg.DaemonAddress()
		}
		return grpcAdapter.NewDaemonClientGRPC(address)
	}
	m, err := a.mediator(ctx, withStorage)
	if err != nil {
		return nil, err
	}
	return grpcAdapter.NewDaemonClientLocal(m), nil
}

// outputJSON reports whether results should be printed as JSON
func (a *app) outputJSON() bool {
	if jsonOutput {
		return true
	}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := handler.Load(); err == nil {
			return userCfg.DefaultOutput == "json"
		}
	}
	return false
}

// Close releases the database and log file
func (a *app) Close() {
	if a.db != nil {
		database.Close(a.db)
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}
