package rbac

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.Permission{}, &models.Internship{}))
	return db
}

func seed(t *testing.T, db *gorm.DB) (userRole, adminRole models.Role, user, admin models.User) {
	getUsers := models.Permission{Name: "get_users"}
	deleteUsers := models.Permission{Name: "delete_users"}
	require.NoError(t, db.Create(&getUsers).Error)
	require.NoError(t, db.Create(&deleteUsers).Error)

	userRole = models.Role{Name: "User", Permissions: []models.Permission{getUsers}}
	adminRole = models.Role{Name: "Admin", Permissions: []models.Permission{getUsers, deleteUsers}}
	require.NoError(t, db.Create(&userRole).Error)
	require.NoError(t, db.Create(&adminRole).Error)

	user = models.User{
		FirstName: "Plain", LastName: "User", Username: "plain",
		Email: "plain@example.com", PasswordHash: "x",
		Roles: []models.Role{userRole},
	}
	admin = models.User{
		FirstName: "Ad", LastName: "Min", Username: "admin",
		Email: "admin@example.com", PasswordHash: "x",
		Roles: []models.Role{userRole, adminRole},
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&admin).Error)
	return
}

func TestResolvePermissionsUnion(t *testing.T) {
	db := newTestDB(t)
	_, _, user, admin := seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}

	perms, err := r.ResolvePermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"get_users", "delete_users"}, perms)

	perms, err = r.ResolvePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"get_users"}, perms)
}

func TestResolvePermissionsNeverStale(t *testing.T) {
	db := newTestDB(t)
	userRole, _, user, _ := seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}

	perms, err := r.ResolvePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotContains(t, perms, "update_users")

	updateUsers := models.Permission{Name: "update_users"}
	require.NoError(t, db.Create(&updateUsers).Error)
	require.NoError(t, db.Model(&userRole).Association("Permissions").Append(&updateUsers))

	perms, err = r.ResolvePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	require.Contains(t, perms, "update_users")
}

func TestHasRole(t *testing.T) {
	db := newTestDB(t)
	_, _, user, admin := seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}
	ctx := context.Background()

	ok, err := r.HasRole(ctx, admin.ID, "Admin")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.HasRole(ctx, user.ID, "Admin")
	require.NoError(t, err)
	require.False(t, ok)

	// any one matching role grants access
	ok, err = r.HasRole(ctx, user.ID, "Admin", "User")
	require.NoError(t, err)
	require.True(t, ok)

	// comparison is case-sensitive
	ok, err = r.HasRole(ctx, admin.ID, "admin")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasPermission(t *testing.T) {
	db := newTestDB(t)
	_, _, user, admin := seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}
	ctx := context.Background()

	ok, err := r.HasPermission(ctx, admin.ID, "delete_users")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.HasPermission(ctx, user.ID, "delete_users")
	require.NoError(t, err)
	require.False(t, ok)

	// exact match only
	ok, err = r.HasPermission(ctx, admin.ID, "delete_user")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasRoleUnknownUser(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}

	_, err := r.HasRole(context.Background(), 9999, "Admin")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRolesForNew(t *testing.T) {
	db := newTestDB(t)
	userRole, adminRole, _, _ := seed(t, db)
	r := &Resolver{Store: &GormStore{DB: db}}
	ctx := context.Background()

	// explicit role ids are honored
	roles, err := r.RolesForNew(ctx, []uint{adminRole.ID})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "Admin", roles[0].Name)

	// no ids falls back to the default role
	roles, err = r.RolesForNew(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, userRole.Name, roles[0].Name)

	// unknown ids fall back too
	roles, err = r.RolesForNew(ctx, []uint{9999})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "User", roles[0].Name)
}

func TestRolesForNewMissingDefault(t *testing.T) {
	db := newTestDB(t)
	r := &Resolver{Store: &GormStore{DB: db}}

	_, err := r.RolesForNew(context.Background(), nil)
	require.ErrorIs(t, err, ErrDefaultRoleMissing)
}
