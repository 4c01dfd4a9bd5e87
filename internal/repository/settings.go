package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/watch"
)

// settingsRepository implements SettingsRepository.
type settingsRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *gorm.DB, broker *watch.Broker) SettingsRepository {
	return &settingsRepository{db: db, broker: broker}
}

// Get returns the user's settings, provisioning a default row on first access.
func (r *settingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	provisioned := models.DefaultSettings(userID)
	if err := r.db.WithContext(ctx).Create(provisioned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableSettings)
	return provisioned, nil
}

// Update updates the user's settings, provisioning defaults first if absent.
func (r *settingsRepository) Update(ctx context.Context, userID string, params UpdateSettingsParams) (*models.Settings, error) {
	settings, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if params.Currency != nil {
		updates["currency"] = *params.Currency
	}
	if params.Language != nil {
		updates["language"] = *params.Language
	}
	if params.Timezone != nil {
		updates["timezone"] = *params.Timezone
	}
	if params.DateFormat != nil {
		updates["date_format"] = *params.DateFormat
	}
	if params.TimeFormat != nil {
		updates["time_format"] = *params.TimeFormat
	}
	if params.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *params.NotificationsEnabled
	}
	if params.BudgetAlertsEnabled != nil {
		updates["budget_alerts_enabled"] = *params.BudgetAlertsEnabled
	}
	if params.Theme != nil {
		if _, err := models.ParseThemeMode(string(*params.Theme)); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["theme"] = *params.Theme
	}
	if params.AutoBackup != nil {
		updates["auto_backup"] = *params.AutoBackup
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableSettings)
	}

	return settings, nil
}

// UpdateTheme stores the theme preference.
func (r *settingsRepository) UpdateTheme(ctx context.Context, userID string, theme models.ThemeMode) error {
	if _, err := models.ParseThemeMode(string(theme)); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	settings, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(settings).Update("theme", theme).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableSettings)
	return nil
}

// Observe streams the user's settings row.
func (r *settingsRepository) Observe(ctx context.Context, userID string) <-chan *models.Settings {
	return observe(ctx, r.broker, []string{tableSettings}, func(ctx context.Context) (*models.Settings, error) {
		return r.Get(ctx, userID)
	})
}
