package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/watch"
)

// categoryRepository implements CategoryRepository.
type categoryRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *gorm.DB, broker *watch.Broker) CategoryRepository {
	return &categoryRepository{db: db, broker: broker}
}

// Create creates a new category owned by the user.
func (r *categoryRepository) Create(ctx context.Context, userID, name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if _, err := models.ParseCategoryType(string(categoryType)); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	db := r.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND is_active = ?", userID, name, true).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	if parentID != nil {
		// Subcategories inherit the type discriminant from their parent.
		var parent models.Category
		if err := db.Where("id = ? AND user_id = ?", *parentID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if parent.Type != categoryType {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategory type must match its parent")
		}
	}

	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableCategories)
	return category, nil
}

// GetByID retrieves a category by id for a specific user.
func (r *categoryRepository) GetByID(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetByUser returns the user's active categories.
func (r *categoryRepository) GetByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetByUserAndType returns the user's active categories of one type.
func (r *categoryRepository) GetByUserAndType(ctx context.Context, userID string, categoryType models.CategoryType) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_active = ?", userID, categoryType, true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetSubcategories returns the active children of a category.
func (r *categoryRepository) GetSubcategories(ctx context.Context, userID, parentID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ? AND is_active = ?", userID, parentID, true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// DefaultTemplates returns the shared seed catalog.
func (r *categoryRepository) DefaultTemplates(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND is_default = ?", "", true)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	var templates []models.Category
	if err := q.Order("name ASC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return templates, nil
}

// Update updates a category's editable fields. The type discriminant is
// immutable after creation and is not part of the update surface.
func (r *categoryRepository) Update(ctx context.Context, userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error) {
	category, err := r.GetByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil && *parentID != "" {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		var parent models.Category
		err := r.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", *parentID, userID).
			First(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}
	if parentID != nil {
		updates["parent_id"] = parentID
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableCategories)
	}

	return category, nil
}

// Deactivate soft-deletes a category. Historical transactions keep their
// reference to the deactivated row.
func (r *categoryRepository) Deactivate(ctx context.Context, userID, categoryID string) error {
	category, err := r.GetByID(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Model(category).Update("is_active", false).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableCategories)
	return nil
}

// Delete hard-deletes a category. It is restricted while transactions
// reference the category.
func (r *categoryRepository) Delete(ctx context.Context, userID, categoryID string) error {
	category, err := r.GetByID(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)

	var txCount int64
	err = db.Model(&models.Transaction{}).
		Where("category_id = ?", categoryID).
		Count(&txCount).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	var childCount int64
	err = db.Model(&models.Category{}).
		Where("parent_id = ?", categoryID).
		Count(&childCount).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.WithMessage(apperrors.ErrCategoryInUse, "Category has subcategories")
	}

	if err := db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableCategories)
	return nil
}

// Observe streams the user's active categories.
func (r *categoryRepository) Observe(ctx context.Context, userID string) <-chan []models.Category {
	return observe(ctx, r.broker, []string{tableCategories}, func(ctx context.Context) ([]models.Category, error) {
		return r.GetByUser(ctx, userID)
	})
}
