package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repository"
)

// ReminderHandler handles reminder-related requests.
type ReminderHandler struct {
	reminders repository.ReminderRepository
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminders repository.ReminderRepository) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// CreateReminderRequest represents the request payload for creating a reminder.
type CreateReminderRequest struct {
	Title       string                  `json:"title" binding:"required,min=1,max=200"`
	Description string                  `json:"description" binding:"max=1000"`
	Date        time.Time               `json:"date" binding:"required"`
	TimeOfDay   string                  `json:"time_of_day" binding:"omitempty,len=5"`
	Priority    models.ReminderPriority `json:"priority" binding:"omitempty,reminder_priority"`
	Category    models.ReminderCategory `json:"category" binding:"omitempty,reminder_category"`
	Recurrence  *models.Recurrence      `json:"recurrence"`
}

// UpdateReminderRequest represents the request payload for updating a reminder.
type UpdateReminderRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string                  `json:"description" binding:"omitempty,max=1000"`
	Date        *time.Time               `json:"date"`
	TimeOfDay   *string                  `json:"time_of_day" binding:"omitempty,len=5"`
	Priority    *models.ReminderPriority `json:"priority" binding:"omitempty,reminder_priority"`
	Category    *models.ReminderCategory `json:"category" binding:"omitempty,reminder_category"`
	Recurrence  *models.Recurrence       `json:"recurrence"`
}

// CreateReminder handles the creation of a new reminder.
// @Summary     Create a reminder
// @Description Create a new reminder, optionally recurring
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReminderRequest true "Reminder details"
// @Success     201 {object} models.Reminder "Reminder created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminders.Create(c.Request.Context(), repository.CreateReminderParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		TimeOfDay:   req.TimeOfDay,
		Priority:    req.Priority,
		Category:    req.Category,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reminder": reminder})
}

// GetReminders lists the user's active reminders.
// @Summary     Get reminders
// @Description Get active reminders, optionally filtered by category or pending state
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category query string false "Filter by category"
// @Param       pending  query bool   false "Only incomplete reminders due now or earlier"
// @Success     200 {array} models.Reminder "Reminders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [get]
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	var reminders []models.Reminder

	switch {
	case c.Query("pending") == "true":
		reminders, err = h.reminders.GetPending(ctx, userID, time.Now())
	case c.Query("category") != "":
		category, parseErr := models.ParseReminderCategory(c.Query("category"))
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		reminders, err = h.reminders.GetByCategory(ctx, userID, category)
	default:
		reminders, err = h.reminders.GetByUser(ctx, userID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// GetReminder retrieves a specific reminder.
// @Summary     Get reminder by ID
// @Description Get a specific reminder by ID
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} models.Reminder "Reminder details"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [get]
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminder, err := h.reminders.GetByID(c.Request.Context(), userID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// UpdateReminder updates an existing reminder.
// @Summary     Update reminder
// @Description Update a reminder's mutable fields
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Reminder ID"
// @Param       request body UpdateReminderRequest true "Updated reminder details"
// @Success     200 {object} models.Reminder "Updated reminder"
// @Failure     400 {object} ErrorResponse "Invalid input or reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminders.Update(c.Request.Context(), userID, reminderID, repository.UpdateReminderParams{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		TimeOfDay:   req.TimeOfDay,
		Priority:    req.Priority,
		Category:    req.Category,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// CompleteReminder marks a reminder as done.
// @Summary     Complete reminder
// @Description Mark a reminder as completed
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} MessageResponse "Reminder completed"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id}/complete [post]
func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reminders.Complete(c.Request.Context(), userID, reminderID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder completed successfully"})
}

// DeleteReminder removes a reminder.
// @Summary     Delete reminder
// @Description Delete a reminder by ID
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} MessageResponse "Reminder deleted"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reminders.Delete(c.Request.Context(), userID, reminderID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}
