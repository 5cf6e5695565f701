package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/bartab/backend/internal/infrastructure/config"
	"github.com/bartab/backend/internal/infrastructure/logger"
	"github.com/bartab/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(config.LogConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("failed to resolve migrations path", zap.Error(err))
	}
	migrationsPath = absPath

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	migrator, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Error("error closing migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal("migration up failed", zap.Error(err))
		}
		log.Info("migrations applied")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal("migration down failed", zap.Error(err))
		}
		log.Info("last migration rolled back")
	case "steps":
		if len(args) < 2 {
			log.Fatal("steps requires a signed count, e.g. steps -1")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := migrator.Steps(n); err != nil {
			log.Fatal("migration steps failed", zap.Error(err))
		}
		log.Info("migrations stepped", zap.Int("steps", n))
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			log.Fatal("failed to read version", zap.Error(err))
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		if len(args) < 2 {
			log.Fatal("force requires a version number")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version", zap.String("value", args[1]))
		}
		if err := migrator.Force(version); err != nil {
			log.Fatal("force failed", zap.Error(err))
		}
		log.Info("schema version forced", zap.Int("version", version))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up              apply all pending migrations
  down            roll back the last migration
  steps <n>       apply n migrations (negative rolls back)
  version         print the current schema version
  force <v>       set the schema version without running migrations

Flags:
  --path          path to migrations directory (default: ./migrations)
  --log-level     log level (debug, info, warn, error)`)
}
