package cli

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/config"
	"github.com/schwifty-labs/morty-pipeline/pkg/database"
	"github.com/schwifty-labs/morty-pipeline/pkg/logging"
)

// app carries the shared wiring every subcommand needs: configuration, the
// root logger, and (for DB-touching steps) the connection pool.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

// newApp loads configuration and builds the logger. When needsDB is set it
// also opens and pings the connection pool.
func newApp(ctx context.Context, configPath, version string, needsDB bool) (*app, func(), error) {
	cfg, err := config.Load(configPath, version)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	if needsDB {
		logger.Info("Connecting to database",
			zap.String("conn", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

		db, err := database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			_ = logger.Sync()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.TestConnection(ctx); err != nil {
			db.Close()
			_ = logger.Sync()
			return nil, nil, err
		}
		a.db = db
	}

	cleanup := func() {
		if a.db != nil {
			a.db.Close()
		}
		_ = logger.Sync()
	}
	return a, cleanup, nil
}

// runMigrations applies pending schema migrations through database/sql, which
// golang-migrate requires.
func (a *app) runMigrations(migrationsPath string) error {
	sqlDB, err := sql.Open("pgx", a.cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, migrationsPath, a.logger)
}
