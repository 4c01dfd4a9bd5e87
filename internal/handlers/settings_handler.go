package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repository"
)

// SettingsHandler handles settings-related requests.
type SettingsHandler struct {
	settings repository.SettingsRepository
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// UpdateSettingsRequest represents the settings update payload.
type UpdateSettingsRequest struct {
	Currency             *string           `json:"currency" binding:"omitempty,iso4217"`
	Language             *string           `json:"language" binding:"omitempty,min=2,max=5"`
	Timezone             *string           `json:"timezone" binding:"omitempty,max=64"`
	DateFormat           *string           `json:"date_format" binding:"omitempty,max=32"`
	TimeFormat           *string           `json:"time_format" binding:"omitempty,max=16"`
	NotificationsEnabled *bool             `json:"notifications_enabled"`
	BudgetAlertsEnabled  *bool             `json:"budget_alerts_enabled"`
	Theme                *models.ThemeMode `json:"theme" binding:"omitempty,theme_mode"`
	AutoBackup           *bool             `json:"auto_backup"`
}

// UpdateThemeRequest represents the theme update payload.
type UpdateThemeRequest struct {
	Theme models.ThemeMode `json:"theme" binding:"required,theme_mode"`
}

// GetSettings returns the user's settings, provisioning defaults on first access.
// @Summary     Get settings
// @Description Get the authenticated user's settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Settings "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings updates the user's settings.
// @Summary     Update settings
// @Description Update any subset of the user's settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Settings fields"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), userID, repository.UpdateSettingsParams{
		Currency:             req.Currency,
		Language:             req.Language,
		Timezone:             req.Timezone,
		DateFormat:           req.DateFormat,
		TimeFormat:           req.TimeFormat,
		NotificationsEnabled: req.NotificationsEnabled,
		BudgetAlertsEnabled:  req.BudgetAlertsEnabled,
		Theme:                req.Theme,
		AutoBackup:           req.AutoBackup,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateTheme stores the theme preference.
// @Summary     Update theme
// @Description Update only the theme preference
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateThemeRequest true "Theme"
// @Success     200 {object} MessageResponse "Theme updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/theme [put]
func (h *SettingsHandler) UpdateTheme(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.settings.UpdateTheme(c.Request.Context(), userID, req.Theme); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Theme updated successfully"})
}
