package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// PostgresSetup applies the embedded SQL migrations.
type PostgresSetup struct {
	db *sql.DB
}

func NewPostgresSetup(db *sql.DB) *PostgresSetup {
	return &PostgresSetup{db: db}
}

// Setup migrates to the latest version. Running it on an up-to-date schema
// is a no-op.
func (s *PostgresSetup) Setup(ctx context.Context) error {
	return s.run(ctx, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// Down rolls back every migration.
func (s *PostgresSetup) Down(ctx context.Context) error {
	return s.run(ctx, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return nil
	})
}

func (s *PostgresSetup) run(ctx context.Context, fn func(m *migrate.Migrate) error) error {
	src, err := iofs.New(postgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	// A dedicated connection, so closing the migrator leaves the pool open.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		src.Close()
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		src.Close()
		conn.Close()
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	return fn(m)
}
