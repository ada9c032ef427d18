package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/hash"
	"github.com/ubateam/uba-backend/internal/logging"
	"github.com/ubateam/uba-backend/internal/models"
	"github.com/ubateam/uba-backend/internal/mykafka"
	"github.com/ubateam/uba-backend/internal/rbac"
	"github.com/ubateam/uba-backend/internal/service/search"
	"github.com/ubateam/uba-backend/internal/tokens"
	"github.com/ubateam/uba-backend/internal/util"
)

type UserHandler struct {
	DB       *gorm.DB
	Tokens   *tokens.Service
	Resolver *rbac.Resolver
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

type createUserRequest struct {
	FirstName    string `json:"firstName"    validate:"required,alpha,min=3,max=50"`
	LastName     string `json:"lastName"     validate:"required,alpha,min=3,max=50"`
	Username     string `json:"username"     validate:"required,min=3,max=50"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,min=7,max=15"`
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required,min=8,max=20,password"`
	Roles        []uint `json:"roles"`
}

type updateUserRequest struct {
	FirstName    *string `json:"firstName"    validate:"omitempty,alpha,min=3,max=50"`
	LastName     *string `json:"lastName"     validate:"omitempty,alpha,min=3,max=50"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,min=7,max=15"`
	Email        *string `json:"email"        validate:"omitempty,email"`
	Password     *string `json:"password"     validate:"omitempty,min=8,max=20,password"`
}

func (h *UserHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *UserHandler) index(c echo.Context, user *models.User) {
	if h.ES == nil {
		return
	}
	if err := search.IndexUser(c.Request().Context(), h.ES, h.ESIndex, user); err != nil {
		logging.FromContext(c.Request().Context()).Error("user index failed", "error", err)
	}
}

func (h *UserHandler) deindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	if err := search.DeleteUser(c.Request().Context(), h.ES, h.ESIndex, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("user deindex failed", "error", err)
	}
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"status": "Email already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("create_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	err = h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"status": "Username already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("create_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("create_failed", "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	roles, err := h.Resolver.RolesForNew(ctx, req.Roles)
	if err != nil {
		if errors.Is(err, rbac.ErrDefaultRoleMissing) {
			l.Error("create_failed", "reason", "default role missing")
			return echo.NewHTTPError(http.StatusInternalServerError, "default role is not configured")
		}
		l.Error("create_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		PasswordHash: pwHash,
		Roles:        roles,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("create_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type":     "user_created",
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	h.index(c, &user)

	l.Info("create_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"status": "User added successfully",
		"id":     user.ID,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Preload("Roles").Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("login_failed", "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.Tokens.Issue(user.ID, user.Email, user.RoleNames())
	if err != nil {
		l.Error("login_failed", "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.User
	if err := h.DB.WithContext(ctx).Preload("Roles").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Preload("Roles").Preload("Internships").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.Email != nil && *req.Email != user.Email {
		var other models.User
		err := h.DB.WithContext(ctx).Where("email = ? AND id <> ?", *req.Email, id).First(&other).Error
		if err == nil {
			return c.JSON(http.StatusConflict, echo.Map{"status": "Email already exists."})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("update_failed", "reason", "db_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.MobileNumber != nil {
		user.MobileNumber = *req.MobileNumber
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			l.Error("update_failed", "reason", "cannot hash the password", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user.PasswordHash = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		l.Error("update_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type": "user_updated",
		"id":   user.ID,
	})
	h.index(c, &user)

	return c.JSON(http.StatusOK, echo.Map{
		"status": fmt.Sprintf("User with id %d updated successfully.", id),
	})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Role associations cascade with the user, internships go with it too.
	if err := h.DB.WithContext(ctx).Model(&user).Association("Roles").Clear(); err != nil {
		l.Error("delete_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.WithContext(ctx).Where("user_id = ?", user.ID).Delete(&models.Internship{}).Error; err != nil {
		l.Error("delete_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		l.Error("delete_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"type": "user_deleted",
		"id":   user.ID,
	})
	h.deindex(c, user.ID)

	l.Info("delete_success", "user_id", user.ID)
	return c.NoContent(http.StatusNoContent)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
