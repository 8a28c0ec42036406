package main

import (
	"context"
	dbsql "database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/audit"
	"github.com/openbase-hq/openbase-engine/pkg/config"
	"github.com/openbase-hq/openbase-engine/pkg/crypto"
	"github.com/openbase-hq/openbase-engine/pkg/database"
	"github.com/openbase-hq/openbase-engine/pkg/handlers"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
	"github.com/openbase-hq/openbase-engine/pkg/services"

	// Backend adapters register themselves with the datasource registry.
	_ "github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/duckdb"
	_ "github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/mongodb"
	_ "github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/mysql"
	_ "github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/postgres"
	_ "github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/sqlite"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.String("data_dir", cfg.DataDir),
		zap.String("database", cfg.Database.Database))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrations run over database/sql; the engine itself uses a pgx pool.
	migrationDB, err := dbsql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	encryptor, err := crypto.NewConnectionEncryptor(cfg.ConnectionEncryptionKey)
	if err != nil {
		logger.Fatal("Failed to initialize connection encryptor", zap.Error(err))
	}

	factory := datasource.NewFactory(datasource.Options{
		DataDir:        cfg.DataDir,
		ConnectTimeout: time.Duration(cfg.Datasource.ConnectTimeoutSeconds) * time.Second,
		PoolMaxConns:   cfg.Datasource.PoolMaxConns,
	})

	dataSourceRepo := repositories.NewDataSourceRepository(db)
	savedQueryRepo := repositories.NewSavedQueryRepository(db)
	writableTableRepo := repositories.NewWritableTableRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	securityAuditor := audit.NewSecurityAuditor(logger)

	dataSourceService := services.NewDataSourceService(dataSourceRepo, encryptor, factory, logger)
	queryService := services.NewQueryService(savedQueryRepo, dataSourceService, factory, securityAuditor, logger)
	writableTableService := services.NewWritableTableService(writableTableRepo, dataSourceService)
	permissionService := services.NewPermissionService(permissionRepo, writableTableRepo)
	writeService := services.NewWriteService(permissionService, writableTableRepo, dataSourceService, auditRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDataSourcesHandler(dataSourceService, factory, logger).RegisterRoutes(mux)
	handlers.NewQueriesHandler(queryService, logger).RegisterRoutes(mux)
	handlers.NewWritableTablesHandler(writableTableService, writeService, logger).RegisterRoutes(mux)
	handlers.NewPermissionsHandler(permissionService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handlers.WithTimeout(mux, time.Duration(cfg.Datasource.QueryTimeoutSeconds)*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting openbase-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
