package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fishgalaxy/backend/internal/storage/postgres"
)

const runTimeout = 30 * time.Second

func main() {
	var (
		command = flag.String("command", "up", "up | down | status")
		steps   = flag.Int("steps", 0, "how many migrations to apply or roll back (0 = all for up, 1 for down)")
		dsn     = flag.String("dsn", "", "PostgreSQL DSN, defaults to DATABASE_URI")
	)
	flag.Parse()

	if err := run(*command, *steps, *dsn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command string, steps int, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URI"))
	}
	if dsn == "" {
		return fmt.Errorf("DATABASE_URI (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(command)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "status":
		// статус печатается ниже для всех команд
	default:
		return fmt.Errorf("unknown command %q (use up, down or status)", command)
	}

	version, applied, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	fmt.Printf("schema version %d, %d migrations applied\n", version, applied)
	return nil
}
