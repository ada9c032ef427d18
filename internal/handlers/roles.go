package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/models"
)

type RoleHandler struct {
	DB *gorm.DB
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "Role name is required"})
	}

	var existing models.Role
	err := h.DB.WithContext(ctx).Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"status": "Role already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	role := models.Role{Name: req.Name}
	if err := h.DB.WithContext(ctx).Create(&role).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Role created successfully",
		"role":    role,
	})
}

// AddPermissionsToRole replaces the role's permission set with the referenced
// permissions.
func (h *RoleHandler) AddPermissionsToRole(c echo.Context) error {
	ctx := c.Request().Context()

	roleID, err := strconv.Atoi(c.Param("roleId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "Invalid role id"})
	}

	var req struct {
		PermissionIDs []uint `json:"permissionIds"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.PermissionIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "Invalid permissions list"})
	}

	var role models.Role
	if err := h.DB.WithContext(ctx).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "Role not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var perms []models.Permission
	if err := h.DB.WithContext(ctx).Where("id IN ?", req.PermissionIDs).Find(&perms).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(perms) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "Permission not found"})
	}

	if err := h.DB.WithContext(ctx).Model(&role).Association("Permissions").Replace(&perms); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	role.Permissions = perms

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Permissions updated successfully",
		"role":    role,
	})
}
