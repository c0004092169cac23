package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/mediantree/internal/cli"
	"github.com/alexanderramin/mediantree/internal/cli/formatter"
	"github.com/alexanderramin/mediantree/internal/config"
	"github.com/alexanderramin/mediantree/internal/db"
	"github.com/alexanderramin/mediantree/internal/repository"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{Setup: setup}

	// Detect interactive terminal for prompts and the browse view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		formatter.SetPlain()
	}

	return cli.NewRootCmd(app).Execute()
}

// setup loads configuration, opens the configured snapshot store, and wires
// the services into app.
func setup(app *cli.App, flags *pflag.FlagSet) (func(), error) {
	v, err := config.New(flags)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	var observers []service.UseCaseObserver
	if cfg.Log.UseCases {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	repo, cleanup, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	// Wire services
	ws := service.NewWorkspace(repo, observers...)
	app.Projects = ws
	app.Tasks = ws
	app.Estimates = service.NewEstimateService(cfg.Estimate.Levels, observers...)
	app.Import = service.NewImportService(ws, observers...)

	return cleanup, nil
}

func openStore(cfg *config.Config) (repository.SnapshotRepo, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendNeo4j:
		ctx := context.Background()
		driver, err := repository.OpenNeo4j(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to neo4j: %w", err)
		}
		return repository.NewNeo4jSnapshotRepo(driver), func() { _ = driver.Close(ctx) }, nil
	default:
		database, err := db.OpenDB(cfg.DB.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteSnapshotRepo(database), func() { _ = database.Close() }, nil
	}
}
