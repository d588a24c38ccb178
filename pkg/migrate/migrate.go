// Package migrate drives goose migrations for the storefront schema.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where the versioned SQL migrations live in the repo.
const DefaultDir = "pkg/migrate/migrations"

// goose needs a dialect set before any command; the schema targets Postgres.
func useDialect() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Run hands a goose command straight through against the given database.
func Run(ctx context.Context, conn *sql.DB, dir, command string, args ...string) error {
	if conn == nil {
		return fmt.Errorf("database connection required")
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := useDialect(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, conn, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion walks the schema up or down until it sits at target,
// a numeric goose version such as 20060102150405.
func MigrateToVersion(ctx context.Context, conn *sql.DB, dir, target string) error {
	if conn == nil {
		return fmt.Errorf("database connection required")
	}
	if dir == "" {
		dir = DefaultDir
	}
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil || version <= 0 {
		return fmt.Errorf("target %q is not a migration version", target)
	}
	if err := useDialect(); err != nil {
		return err
	}
	current, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("current schema version: %w", err)
	}

	switch {
	case current < version:
		err = goose.UpToContext(ctx, conn, dir, version)
	case current > version:
		err = goose.DownToContext(ctx, conn, dir, version)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %d to %d: %w", current, version, err)
	}
	return nil
}
