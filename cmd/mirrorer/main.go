package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/cli"
	"github.com/alexanderramin/mirrorer/internal/db"
	"github.com/alexanderramin/mirrorer/internal/llm"
	"github.com/alexanderramin/mirrorer/internal/repository"
	"github.com/alexanderramin/mirrorer/internal/service"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := newLogger(os.Stderr, os.Getenv("MIRRORER_LOG_LEVEL"), os.Getenv("MIRRORER_LOG_FORMAT"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useCases := service.NewLogUseCaseObserver(logger)
	app := &cli.App{
		Logger:   logger,
		HTTPAddr: os.Getenv("MIRRORER_HTTP_ADDR"),
	}

	// A JSON catalog file replaces the SQLite store entirely.
	if path := os.Getenv("MIRRORER_CATALOG"); path != "" {
		app.Users = catalog.NewFileProvider(path)
	} else {
		dbPath := os.Getenv("MIRRORER_DB")
		if dbPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			dbPath = filepath.Join(home, ".mirrorer", "catalog.db")
		}
		database, err := db.OpenDB(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		app.Users = repository.NewSQLiteCatalogRepo(database)
		app.Import = service.NewImportService(db.NewSQLiteUnitOfWork(database), useCases)
	}

	llmCfg := llm.LoadConfig()
	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		observer = llm.NewLogObserver(logger)
	}

	roster := simulation.DefaultRoster()
	if path := os.Getenv("MIRRORER_BACKENDS"); path != "" {
		r, err := simulation.LoadRoster(path)
		if err != nil {
			return err
		}
		roster = r
	}
	backends, err := simulation.BuildBackends(roster, llmCfg, observer)
	if err != nil {
		return fmt.Errorf("building backends: %w", err)
	}

	app.Orchestrator = simulation.NewOrchestrator(backends, app.Users, logger)
	app.Simulations = service.NewSimulationService(app.Users, app.Orchestrator, useCases)

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
