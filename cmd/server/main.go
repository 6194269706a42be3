package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/config"
	httpapi "github.com/tejasgroup/expenseflow/internal/interfaces/http"
	"github.com/tejasgroup/expenseflow/internal/repository"
	"github.com/tejasgroup/expenseflow/internal/service"
	"github.com/tejasgroup/expenseflow/migrations"
	"github.com/tejasgroup/expenseflow/pkg/database"
	"github.com/tejasgroup/expenseflow/pkg/utils"
)

func main() {
	// Local .env overrides are optional; the file is absent in production.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	identityRepo := repository.NewIdentityRepository(db.DB, logger)

	identityService := service.NewIdentityService(identityRepo, logger)
	expenseService := service.NewExpenseService(expenseRepo, identityRepo, logger)
	reportService := service.NewReportService(expenseRepo, logger)

	if err := identityService.EnsureDefaultAdmin(cfg.Admin.Username, cfg.Admin.Secret); err != nil {
		logger.Fatal("Failed to seed default admin", zap.Error(err))
	}

	tokens := httpapi.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handlers := httpapi.NewHandlers(expenseService, identityService, reportService, tokens, logger)
	server := httpapi.NewServer(cfg.Server, handlers, tokens, identityService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
