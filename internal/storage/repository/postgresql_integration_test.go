package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbenzing/slimbooks-app/internal/models"
)

func TestStorage_Users_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	roleID := factory.CreateRole(t, "admin", "view_users", "create_users", "edit_users", "delete_users")
	memberRoleID := factory.CreateRole(t, "member", "view_users")
	companyID := factory.CreateCompany(t, "Acme Inc")

	t.Run("список не содержит мягко удаленных", func(t *testing.T) {
		aliveID := factory.CreateUser(t, "Ivan", "Petrov", "ivan@example.com", roleID, nil, true, false)
		factory.CreateUser(t, "Dead", "User", "dead@example.com", roleID, nil, true, true)

		result, err := storage.ListUsers(ctx, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Users, 1)
		assert.Equal(t, aliveID, result.Users[0].ID)
	})

	t.Run("детали включают роль, разрешения и компанию", func(t *testing.T) {
		id := factory.CreateUser(t, "Olga", "Sidorova", "olga@example.com", memberRoleID, &companyID, true, false)

		details, err := storage.GetUserDetails(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "member", details.RoleName)
		assert.Equal(t, "Acme Inc", details.CompanyName)
		assert.Equal(t, []string{"view_users"}, details.Permissions)
	})

	t.Run("детали удаленной записи не находятся", func(t *testing.T) {
		id := factory.CreateUser(t, "Gone", "Soon", "gone@example.com", roleID, nil, true, true)

		_, err := storage.GetUserDetails(ctx, id)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("проверка занятости почты исключает собственную запись", func(t *testing.T) {
		id := factory.CreateUser(t, "Same", "Email", "same@example.com", roleID, nil, true, false)

		taken, err := storage.EmailTaken(ctx, "same@example.com", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = storage.EmailTaken(ctx, "same@example.com", id)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("создание и активация", func(t *testing.T) {
		id, err := storage.CreateUser(ctx, models.User{
			FirstName:    "New",
			LastName:     "Person",
			Email:        "new@example.com",
			RoleID:       roleID,
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		require.NoError(t, storage.SetActivationToken(ctx, id, "token-1"))

		count, err := storage.SetUserActive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		user, err := storage.GetUserByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.Empty(t, user.ActivationToken)
	})

	t.Run("обновление удаленной записи не затрагивает строк", func(t *testing.T) {
		id := factory.CreateUser(t, "Upd", "Deleted", "upd-deleted@example.com", roleID, nil, true, true)

		count, err := storage.UpdateUser(ctx, id, models.User{
			FirstName: "X", LastName: "Y", Email: "upd-deleted@example.com", RoleID: roleID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("повторное мягкое удаление не затрагивает строк", func(t *testing.T) {
		id := factory.CreateUser(t, "Del", "Twice", "del-twice@example.com", roleID, nil, true, false)

		count, err := storage.SoftDeleteUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		factory.VerifyUserDeleted(t, id)

		count, err = storage.SoftDeleteUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("роли и компании для форм", func(t *testing.T) {
		roles, err := storage.ListRoles(ctx, 100)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(roles), 2)

		companies, err := storage.ListCompanies(ctx, 100)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(companies), 1)
	})
}
