package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/watch"
)

// reminderRepository implements ReminderRepository.
type reminderRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewReminderRepository creates a new ReminderRepository.
func NewReminderRepository(db *gorm.DB, broker *watch.Broker) ReminderRepository {
	return &reminderRepository{db: db, broker: broker}
}

// Create creates a new reminder.
func (r *reminderRepository) Create(ctx context.Context, params CreateReminderParams) (*models.Reminder, error) {
	if params.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}

	priority := params.Priority
	if priority == "" {
		priority = models.ReminderPriorityMedium
	} else if _, err := models.ParseReminderPriority(string(priority)); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	category := params.Category
	if category == "" {
		category = models.ReminderCategoryGeneral
	} else if _, err := models.ParseReminderCategory(string(category)); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	reminder := &models.Reminder{
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		Date:        params.Date,
		TimeOfDay:   params.TimeOfDay,
		Priority:    priority,
		Category:    category,
		Recurrence:  params.Recurrence,
		IsActive:    true,
	}
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableReminders)
	return reminder, nil
}

// GetByID retrieves a reminder by id for a specific user.
func (r *reminderRepository) GetByID(ctx context.Context, userID, reminderID string) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", reminderID, userID).
		First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReminderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &reminder, nil
}

// GetByUser returns the user's active reminders, soonest first.
func (r *reminderRepository) GetByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// GetPending returns active, incomplete reminders due at or before due.
func (r *reminderRepository) GetPending(ctx context.Context, userID string, due time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND completed = ? AND date <= ?",
			userID, true, false, due).
		Order("date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// GetByCategory returns the user's active reminders with the given tag.
func (r *reminderRepository) GetByCategory(ctx context.Context, userID string, category models.ReminderCategory) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND is_active = ?", userID, category, true).
		Order("date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// Update updates a reminder's mutable fields.
func (r *reminderRepository) Update(ctx context.Context, userID, reminderID string, params UpdateReminderParams) (*models.Reminder, error) {
	reminder, err := r.GetByID(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}
	if params.Date != nil {
		updates["date"] = *params.Date
	}
	if params.TimeOfDay != nil {
		updates["time_of_day"] = *params.TimeOfDay
	}
	if params.Priority != nil {
		if _, err := models.ParseReminderPriority(string(*params.Priority)); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["priority"] = *params.Priority
	}
	if params.Category != nil {
		if _, err := models.ParseReminderCategory(string(*params.Category)); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["category"] = *params.Category
	}
	if params.Recurrence != nil {
		updates["recurrence"] = *params.Recurrence
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(reminder).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableReminders)
	}

	return reminder, nil
}

// Complete marks a reminder as done.
func (r *reminderRepository) Complete(ctx context.Context, userID, reminderID string) error {
	reminder, err := r.GetByID(ctx, userID, reminderID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Model(reminder).Update("completed", true).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableReminders)
	return nil
}

// Delete removes a reminder.
func (r *reminderRepository) Delete(ctx context.Context, userID, reminderID string) error {
	reminder, err := r.GetByID(ctx, userID, reminderID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(reminder).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableReminders)
	return nil
}

// Observe streams the user's active reminders.
func (r *reminderRepository) Observe(ctx context.Context, userID string) <-chan []models.Reminder {
	return observe(ctx, r.broker, []string{tableReminders}, func(ctx context.Context) ([]models.Reminder, error) {
		return r.GetByUser(ctx, userID)
	})
}
