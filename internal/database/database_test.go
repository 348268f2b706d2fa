package database

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/config"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "data", "test.db")}

	db, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, "", zap.NewNop()))
	assert.NoError(t, HealthCheck(context.Background(), db))

	assertSchema(t, db)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}

func TestRunMigrations_Postgres(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "nutriwise",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "nutriwise",
		DBSSLMode:  "disable",
	}
	db, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db, cfg.PostgresDSN(), zap.NewNop()))
	// a second run is a no-op
	require.NoError(t, RunMigrations(db, cfg.PostgresDSN(), zap.NewNop()))

	assertSchema(t, db)
}

func assertSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	user := models.User{Username: "tester", Email: fmt.Sprintf("%s@example.com", uuid.NewString()), PasswordHash: "hash"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	dup := models.User{Username: "tester", Email: "other@example.com", PasswordHash: "hash"}
	assert.Error(t, db.Create(&dup).Error, "usernames are unique")

	prompt := models.Prompt{UserID: user.ID, PromptType: models.PromptTypeFoodAnalysis, PromptText: "analyse kiwi", Status: models.PromptStatusPending}
	require.NoError(t, db.Create(&prompt).Error)

	var got models.Prompt
	require.NoError(t, db.First(&got, "id = ?", prompt.ID).Error)
	assert.Equal(t, user.ID, got.UserID)
	assert.Nil(t, got.Response)
}
