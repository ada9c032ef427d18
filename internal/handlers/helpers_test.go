package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/handlers"
	authmw "github.com/ubateam/uba-backend/internal/middleware/auth"
	"github.com/ubateam/uba-backend/internal/models"
	"github.com/ubateam/uba-backend/internal/mykafka"
	"github.com/ubateam/uba-backend/internal/rbac"
	"github.com/ubateam/uba-backend/internal/tokens"
	httpserver "github.com/ubateam/uba-backend/internal/transport/http"
	"github.com/ubateam/uba-backend/internal/validation"
)

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *tokens.Service
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.Permission{}, &models.Internship{}))
	return db
}

func newEnv(t *testing.T) *testEnv {
	db := initTestDB(t)

	tokenService := &tokens.Service{Secret: []byte("test-secret"), TTL: time.Hour}
	resolver := &rbac.Resolver{Store: &rbac.GormStore{DB: db}}

	e := echo.New()
	e.Validator = validation.New()

	deps := httpserver.Deps{
		Auth: &authmw.Middleware{Tokens: tokenService, Resolver: resolver},
		Users: &handlers.UserHandler{
			DB:       db,
			Tokens:   tokenService,
			Resolver: resolver,
			Producer: &mykafka.Producer{},
		},
		Roles:       &handlers.RoleHandler{DB: db},
		Permissions: &handlers.PermissionHandler{DB: db},
		Internships: &handlers.InternshipHandler{DB: db},
		Search:      &handlers.SearchHandler{},
	}
	httpserver.Register(e, &deps)

	return &testEnv{E: e, DB: db, Tokens: tokenService}
}

// seedRBAC creates the roles and permissions the router's gates refer to.
func (env *testEnv) seedRBAC(t *testing.T) (userRole, adminRole models.Role) {
	getUsers := models.Permission{Name: "get_users"}
	updateUsers := models.Permission{Name: "update_users"}
	deleteUsers := models.Permission{Name: "delete_users"}
	for _, p := range []*models.Permission{&getUsers, &updateUsers, &deleteUsers} {
		require.NoError(t, env.DB.Create(p).Error)
	}

	userRole = models.Role{Name: "User", Permissions: []models.Permission{getUsers}}
	adminRole = models.Role{Name: "Admin", Permissions: []models.Permission{getUsers, updateUsers, deleteUsers}}
	require.NoError(t, env.DB.Create(&userRole).Error)
	require.NoError(t, env.DB.Create(&adminRole).Error)
	return
}

func (env *testEnv) createUser(t *testing.T, username, email string, roles ...models.Role) models.User {
	user := models.User{
		FirstName:    "Test",
		LastName:     "Person",
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Roles:        roles,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user models.User) string {
	raw, err := env.Tokens.Issue(user.ID, user.Email, user.RoleNames())
	require.NoError(t, err)
	return raw
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func validUserPayload(username, email string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":    "Jane",
		"lastName":     "Doe",
		"username":     username,
		"mobileNumber": "9876543210",
		"email":        email,
		"password":     "Password@123",
	}
}
