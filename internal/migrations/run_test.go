package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rbenzing/slimbooks-app/internal/lib/password"
	"github.com/rbenzing/slimbooks-app/internal/storage/repository"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	migrationsPath := filepath.Join(projectRoot, "migrations")
	t.Logf("Migrations path: %s", migrationsPath)
	return migrationsPath
}

func TestRunMigrations(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	migrationsPath := getMigrationsPath(t)

	err := Run(db, migrationsPath)
	require.NoError(t, err)

	for _, table := range []string{"users", "roles", "permissions", "role_permissions", "companies"} {
		var exists bool
		err = db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)
		`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "Table %q should exist", table)
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'users'
			AND indexname = 'idx_users_is_deleted'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "Index should exist")

	var permCount int
	err = db.QueryRow("SELECT COUNT(*) FROM permissions").Scan(&permCount)
	require.NoError(t, err)
	require.Equal(t, 4, permCount, "Should have four seeded permissions")

	var adminPerms int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM role_permissions rp
		JOIN roles r ON r.id = rp.role_id
		WHERE r.name = 'admin'
	`).Scan(&adminPerms)
	require.NoError(t, err)
	require.Equal(t, 4, adminPerms, "Admin role should have all permissions")
}

func TestSeededAdminCanSignIn(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(db, getMigrationsPath(t))
	require.NoError(t, err)

	storage := &repository.Storage{DB: db}

	admin, err := storage.GetUserByEmail(context.Background(), "admin@slimbooks.local")
	require.NoError(t, err, "Fresh database should contain the bootstrap admin")
	assert.True(t, admin.IsActive, "Bootstrap admin should be active without an activation email")
	assert.False(t, admin.IsDeleted)
	require.NoError(t, password.CompareHash(admin.PasswordHash, "changeme"),
		"Bootstrap admin password should match the documented default")

	var roleName string
	err = db.QueryRow(`
		SELECT r.name FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = 'admin@slimbooks.local'
	`).Scan(&roleName)
	require.NoError(t, err)
	assert.Equal(t, "admin", roleName)
}

func TestMigrationIdempotency(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	migrationsPath := getMigrationsPath(t)

	err := Run(db, migrationsPath)
	require.NoError(t, err)

	err = Run(db, migrationsPath)
	require.True(t, err == nil || err.Error() == "no change",
		"Running migrations twice should not fail. Got error: %v", err)

	var roleCount int
	err = db.QueryRow("SELECT COUNT(*) FROM roles").Scan(&roleCount)
	require.NoError(t, err)
	require.Equal(t, 3, roleCount, "Should still have three seeded roles after second run")
}
