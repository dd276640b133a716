package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
	"github.com/chrissnell/mvtanalyzer/pkg/migrate"
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	var (
		dbPath         = flag.String("db", "", "SQLite configuration database")
		migrationDir   = flag.String("dir", "", "Migration directory (default: built-in configuration schema)")
		migrationTable = flag.String("table", config.MigrationTable, "Migration table name")
		command        = flag.String("command", "up", "Migration command: up, down, to, version, status")
		targetVersion  = flag.String("target", "", "Target version for down/to commands")
		debug          = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Errorf("Failed to ping database: %v", err)
		os.Exit(1)
	}

	var provider migrate.MigrationProvider
	if *migrationDir != "" {
		provider = migrate.NewFileProvider(*migrationDir, *migrationTable)
	} else {
		provider = migrate.NewFSProvider(config.Migrations, "migrations", *migrationTable)
	}
	migrator := migrate.NewMigrator(db, provider).WithLogger(log.GetSugaredLogger())

	if err := run(migrator, *command, *targetVersion); err != nil {
		log.Errorf("Migration command failed: %v", err)
		os.Exit(1)
	}
}

func run(migrator *migrate.Migrator, command, target string) error {
	switch command {
	case "up":
		return migrator.MigrateUp()
	case "down", "to":
		if target == "" {
			return fmt.Errorf("-target flag is required for %s command", command)
		}
		version, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid target version: %w", err)
		}
		if command == "down" {
			return migrator.MigrateDown(version)
		}
		return migrator.MigrateTo(version)
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Current version: %d\n", version)
		return nil
	case "status":
		return showStatus(migrator)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func showStatus(migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Printf("Current version: %d\n", currentVersion)
	fmt.Printf("Pending migrations: %d\n", len(pending))

	if len(pending) > 0 {
		fmt.Println("\nPending migrations:")
		for _, migration := range pending {
			fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
		}
	}

	return nil
}
