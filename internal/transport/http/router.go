package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/ubateam/uba-backend/internal/handlers"
	authmw "github.com/ubateam/uba-backend/internal/middleware/auth"
)

type Deps struct {
	Auth        *authmw.Middleware
	Users       *handlers.UserHandler
	Roles       *handlers.RoleHandler
	Permissions *handlers.PermissionHandler
	Internships *handlers.InternshipHandler
	Search      *handlers.SearchHandler
}

// Register mounts all routes. Each gated route carries RequireAuth plus
// exactly one authorization stage: a role check or a permission check.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	users := e.Group("/users")
	users.POST("", d.Users.CreateUser)
	users.POST("/login", d.Users.Login)

	users.GET("", d.Users.GetUsers, d.Auth.RequireAuth, d.Auth.RequirePermission("get_users"))
	users.GET("/search", d.Search.Search, d.Auth.RequireAuth, d.Auth.RequirePermission("get_users"))
	users.GET("/:id", d.Users.GetUser, d.Auth.RequireAuth, d.Auth.RequirePermission("get_users"))
	users.PATCH("/:id", d.Users.UpdateUser, d.Auth.RequireAuth, d.Auth.RequirePermission("update_users"))
	users.DELETE("/:id", d.Users.DeleteUser, d.Auth.RequireAuth, d.Auth.RequireRole("Admin"))

	users.POST("/:id/internships", d.Internships.CreateInternship, d.Auth.RequireAuth, d.Auth.RequirePermission("update_users"))
	users.GET("/:id/internships", d.Internships.ListInternships, d.Auth.RequireAuth, d.Auth.RequirePermission("get_users"))

	admin := e.Group("", d.Auth.RequireAuth, d.Auth.RequireRole("Admin"))
	admin.POST("/roles", d.Roles.CreateRole)
	admin.POST("/roles/:roleId/permissions", d.Roles.AddPermissionsToRole)
	admin.POST("/permissions", d.Permissions.CreatePermission)
}
