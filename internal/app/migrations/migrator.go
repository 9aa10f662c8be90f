package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Migrator applies numbered SQL files once each, tracking them in schema_migrations.
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// VersionOf extracts the version prefix from a migration file name ("001_init.sql" => "001").
func VersionOf(filePath string) string {
	name := filepath.Base(filePath)
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// MigrateFromFile executes one migration file inside a transaction, together with its bookkeeping row.
func (m *Migrator) MigrateFromFile(ctx context.Context, filePath string) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	version := VersionOf(filePath)
	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return err
	}
	if applied {
		m.logger.Debug().Str("file", filepath.Base(filePath)).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("migration %s failed: %w", version, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, version, time.Now()); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.logger.Info().Str("file", filePath).Msg("Migration applied")
	return nil
}

// SQLFiles returns the .sql files of dirPath in execution order.
func SQLFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dirPath, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// MigrateFromDirectory applies every pending SQL file in dirPath in order.
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	files, err := SQLFiles(dirPath)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := m.MigrateFromFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
