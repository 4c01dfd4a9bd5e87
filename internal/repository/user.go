package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/watch"
)

// userRepository implements UserRepository.
type userRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB, broker *watch.Broker) UserRepository {
	return &userRepository{db: db, broker: broker}
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateProfile updates the user's editable profile fields.
func (r *userRepository) UpdateProfile(ctx context.Context, id, name, phone, photoURL string) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if photoURL != "" {
		updates["photo_url"] = photoURL
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableUsers)
	}

	return user, nil
}

// UpdatePreferences updates the user's currency and timezone.
func (r *userRepository) UpdatePreferences(ctx context.Context, id, currency, timezone string) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if currency != "" {
		updates["currency"] = currency
	}
	if timezone != "" {
		updates["timezone"] = timezone
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableUsers)
	}

	return user, nil
}

// Delete removes the user and every row they own in one transaction.
// Category rows with an empty owner are the shared templates and survive.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.Transaction{},
			&models.Budget{},
			&models.Reminder{},
			&models.Note{},
			&models.Settings{},
			&models.Category{},
		}
		for _, model := range owned {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableUsers, tableCategories, tableTransactions,
		tableBudgets, tableReminders, tableNotes, tableSettings)
	return nil
}

// Observe streams the user row, re-emitting on every change.
func (r *userRepository) Observe(ctx context.Context, id string) <-chan *models.User {
	return observe(ctx, r.broker, []string{tableUsers}, func(ctx context.Context) (*models.User, error) {
		return r.GetByID(ctx, id)
	})
}
