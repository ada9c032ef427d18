package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ubateam/uba-backend/internal/models"
)

type InternshipHandler struct {
	DB *gorm.DB
}

type createInternshipRequest struct {
	JoinedDate     string `json:"joinedDate"     validate:"required"`
	CompletionDate string `json:"completionDate" validate:"omitempty"`
	IsCertified    bool   `json:"isCertified"`
	MentorName     string `json:"mentorName"     validate:"required"`
}

func (h *InternshipHandler) CreateInternship(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var req createInternshipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	joined, err := parseDate(req.JoinedDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid joinedDate")
	}
	var completion time.Time
	if req.CompletionDate != "" {
		completion, err = parseDate(req.CompletionDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid completionDate")
		}
	}

	internship := models.Internship{
		JoinedDate:     joined,
		CompletionDate: completion,
		IsCertified:    req.IsCertified,
		MentorName:     req.MentorName,
		UserID:         user.ID,
	}
	if err := h.DB.WithContext(ctx).Create(&internship).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create internship.")
	}

	return c.JSON(http.StatusCreated, internship)
}

func (h *InternshipHandler) ListInternships(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var internships []models.Internship
	if err := h.DB.WithContext(ctx).Where("user_id = ?", user.ID).Order("id ASC").Find(&internships).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, internships)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
