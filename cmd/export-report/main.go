package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/config"
	"github.com/tejasgroup/expenseflow/internal/export"
	"github.com/tejasgroup/expenseflow/internal/repository"
	"github.com/tejasgroup/expenseflow/internal/service"
	"github.com/tejasgroup/expenseflow/migrations"
	"github.com/tejasgroup/expenseflow/pkg/database"
	"github.com/tejasgroup/expenseflow/pkg/utils"
)

// export-report writes the full expense register and the summary sheets
// to an Excel workbook, reading the same database the server uses.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	outputPath := flag.String("out", "expenses.xlsx", "path of the workbook to write")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
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

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	reports := service.NewReportService(expenseRepo, logger)

	records, err := expenseRepo.List(repository.Filter{OldestFirst: true})
	if err != nil {
		logger.Fatal("Failed to list expenses", zap.Error(err))
	}
	brands, err := reports.BrandSummary("")
	if err != nil {
		logger.Fatal("Failed to summarize by brand", zap.Error(err))
	}
	categories, err := reports.CategorySummary()
	if err != nil {
		logger.Fatal("Failed to summarize by category", zap.Error(err))
	}
	months, err := reports.MonthSummary()
	if err != nil {
		logger.Fatal("Failed to summarize by month", zap.Error(err))
	}
	matrix, err := reports.Matrix()
	if err != nil {
		logger.Fatal("Failed to build brand month matrix", zap.Error(err))
	}

	writer := export.NewExcelWriter(logger)
	if err := writer.WriteWorkbook(*outputPath, records, brands, categories, months, matrix); err != nil {
		logger.Fatal("Failed to write workbook", zap.Error(err))
	}

	fmt.Printf("Wrote %d expense records to %s\n", len(records), *outputPath)
}
