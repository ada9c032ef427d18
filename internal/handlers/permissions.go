package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/models"
)

type PermissionHandler struct {
	DB *gorm.DB
}

func (h *PermissionHandler) CreatePermission(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "Permission name is required"})
	}

	var existing models.Permission
	err := h.DB.WithContext(ctx).Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"status": "Permission already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	permission := models.Permission{Name: req.Name}
	if err := h.DB.WithContext(ctx).Create(&permission).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Permission created successfully",
		"permission": permission,
	})
}
