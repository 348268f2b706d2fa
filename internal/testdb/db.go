// Package testdb provides throwaway databases for tests.
package testdb

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pageza/nutriwise/backend/config"
	"github.com/pageza/nutriwise/backend/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestDB wraps a test database instance
type TestDB struct {
	DB        *gorm.DB
	Config    *config.Config
	Container testcontainers.Container
}

// Close cleans up the test database
func (td *TestDB) Close() error {
	if sqlDB, err := td.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if td.Container != nil {
		return td.Container.Terminate(context.Background())
	}
	return nil
}

// SQLite returns a migrated sqlite database stored under t.TempDir.
func SQLite(t *testing.T) *TestDB {
	t.Helper()

	cfg := &config.Config{
		Env:      config.Test,
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := database.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, "", zap.NewNop()))

	td := &TestDB{DB: db, Config: cfg}
	t.Cleanup(func() {
		if err := td.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})
	return td
}

// Postgres starts a postgres container and applies the SQL migrations. The
// test is skipped when docker is unavailable.
func Postgres(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		Env:        config.Test,
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "test",
		DBSSLMode:  "disable",
	}
	db, err := database.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, cfg.PostgresDSN(), zap.NewNop()))

	td := &TestDB{DB: db, Config: cfg, Container: container}
	t.Cleanup(func() {
		if err := td.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})
	return td
}
