package repository

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/logger"
	"kosh/internal/models"
	"kosh/internal/prefs"
	"kosh/internal/watch"
)

const minPasswordLength = 8

// HashPassword returns the hex-encoded SHA-256 digest of a password.
// Login compares recomputed digests for equality, so the encoding must
// stay stable across releases.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// authRepository implements AuthRepository.
type authRepository struct {
	db     *gorm.DB
	prefs  *prefs.Store
	broker *watch.Broker
}

// NewAuthRepository creates a new AuthRepository.
func NewAuthRepository(db *gorm.DB, store *prefs.Store, broker *watch.Broker) AuthRepository {
	return &authRepository{db: db, prefs: store, broker: broker}
}

// Login verifies the credentials and persists the session.
// Absent user and wrong password are indistinguishable to the caller.
func (r *authRepository) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	supplied := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(user.PasswordHash)) != 1 {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := r.prefs.SetSession(user.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &user, nil
}

// Register creates a new user with provisioned settings and a personal copy
// of the default category templates.
func (r *authRepository) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and email are required")
	}
	if len(params.Password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	timezone := params.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	user := &models.User{
		Name:         params.Name,
		Email:        email,
		Phone:        params.Phone,
		PasswordHash: HashPassword(params.Password),
		Currency:     currency,
		Timezone:     timezone,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settings := models.DefaultSettings(user.ID)
	settings.Currency = currency
	settings.Timezone = timezone
	if err := db.Create(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := r.copyDefaultCategories(ctx, user.ID); err != nil {
		return nil, err
	}

	if err := r.prefs.SetSession(user.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableUsers, tableSettings, tableCategories)
	logger.Get().Infow("user registered", "user_id", user.ID)
	return user, nil
}

// copyDefaultCategories duplicates the shared templates under the new user:
// fresh id, owner set, default flag cleared.
func (r *authRepository) copyDefaultCategories(ctx context.Context, userID string) error {
	var templates []models.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", "", true).
		Find(&templates).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, tpl := range templates {
		copy := models.Category{
			UserID:    userID,
			Name:      tpl.Name,
			Type:      tpl.Type,
			Icon:      tpl.Icon,
			Color:     tpl.Color,
			IsDefault: false,
			IsActive:  true,
		}
		if err := r.db.WithContext(ctx).Create(&copy).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// ChangePassword re-verifies the old password before storing the new hash.
func (r *authRepository) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if HashPassword(oldPassword) != user.PasswordHash {
		return apperrors.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.ErrWeakPassword
	}

	err := r.db.WithContext(ctx).Model(&user).
		Update("password_hash", HashPassword(newPassword)).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableUsers)
	return nil
}

// Logout clears the persisted session.
func (r *authRepository) Logout(ctx context.Context) error {
	if err := r.prefs.ClearSession(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Session reads the persisted login state.
func (r *authRepository) Session() Session {
	return Session{
		UserID:   r.prefs.CurrentUserID(),
		LoggedIn: r.prefs.IsLoggedIn(),
	}
}
