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

// nearLimitThreshold is the spent/allocated ratio at which a budget counts
// as near its limit.
const nearLimitThreshold = 0.8

// budgetRepository implements BudgetRepository.
type budgetRepository struct {
	db     *gorm.DB
	broker *watch.Broker
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db *gorm.DB, broker *watch.Broker) BudgetRepository {
	return &budgetRepository{db: db, broker: broker}
}

// Create creates a new budget for a category. More than one active budget
// per (user, category, period) is not rejected; reads pick the first match.
func (r *budgetRepository) Create(ctx context.Context, params CreateBudgetParams) (*models.Budget, error) {
	if params.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if _, err := models.ParseBudgetPeriod(string(params.Period)); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if !params.EndDate.After(params.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must be after start date")
	}

	db := r.db.WithContext(ctx)

	var category models.Category
	err := db.Where("id = ? AND user_id = ?", params.CategoryID, params.UserID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:     params.UserID,
		CategoryID: params.CategoryID,
		Name:       params.Name,
		Amount:     params.Amount,
		Spent:      0,
		Period:     params.Period,
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		IsActive:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableBudgets)
	return budget, nil
}

// GetByID retrieves a budget by id for a specific user.
func (r *budgetRepository) GetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.WithContext(ctx).Preload("Category").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetByUser returns the user's budgets, optionally active only.
func (r *budgetRepository) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]models.Budget, error) {
	q := r.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var budgets []models.Budget
	if err := q.Order("start_date DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetActiveAt returns active budgets whose validity window contains at.
func (r *budgetRepository) GetActiveAt(ctx context.Context, userID string, at time.Time) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?",
			userID, true, at, at).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetByCategoryAndPeriod returns active budgets for one category and period,
// newest window first. More than one row is possible; callers take the first.
func (r *budgetRepository) GetByCategoryAndPeriod(ctx context.Context, userID, categoryID string, period models.BudgetPeriod) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ? AND period = ? AND is_active = ?",
			userID, categoryID, period, true).
		Order("start_date DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// Update updates a budget's editable fields.
func (r *budgetRepository) Update(ctx context.Context, userID, budgetID string, amount *float64, period *models.BudgetPeriod, endDate *time.Time) (*models.Budget, error) {
	budget, err := r.GetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if period != nil {
		if _, err := models.ParseBudgetPeriod(string(*period)); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		updates["period"] = *period
	}
	if endDate != nil {
		updates["end_date"] = *endDate
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableBudgets)
	}

	return budget, nil
}

// AddToSpent atomically increments the budget's accumulated spent amount.
func (r *budgetRepository) AddToSpent(ctx context.Context, userID, budgetID string, delta float64) error {
	result := r.db.WithContext(ctx).Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Update("spent", gorm.Expr("spent + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}

	r.broker.Notify(tableBudgets)
	return nil
}

// Deactivate marks a budget inactive.
func (r *budgetRepository) Deactivate(ctx context.Context, userID, budgetID string) error {
	budget, err := r.GetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Model(budget).Update("is_active", false).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableBudgets)
	return nil
}

// Delete removes a budget.
func (r *budgetRepository) Delete(ctx context.Context, userID, budgetID string) error {
	budget, err := r.GetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableBudgets)
	return nil
}

// NearLimit returns active budgets with spent at or above 80% of the allocation.
func (r *budgetRepository) NearLimit(ctx context.Context, userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND is_active = ? AND spent >= amount * ?", userID, true, nearLimitThreshold).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// Alerts classifies the user's active budgets by utilization: >=100%
// exceeded, >=80% warning. Budgets below the warning threshold produce no
// alert.
func (r *budgetRepository) Alerts(ctx context.Context, userID string) ([]BudgetAlert, error) {
	budgets, err := r.GetByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	alerts := []BudgetAlert{}
	for _, b := range budgets {
		utilization := b.Utilization()
		switch {
		case utilization >= 100:
			alerts = append(alerts, BudgetAlert{Budget: b, Utilization: utilization, Type: models.BudgetAlertExceeded})
		case utilization >= 80:
			alerts = append(alerts, BudgetAlert{Budget: b, Utilization: utilization, Type: models.BudgetAlertWarning})
		}
	}
	return alerts, nil
}

// Observe streams the user's active budgets.
func (r *budgetRepository) Observe(ctx context.Context, userID string) <-chan []models.Budget {
	return observe(ctx, r.broker, []string{tableBudgets}, func(ctx context.Context) ([]models.Budget, error) {
		return r.GetByUser(ctx, userID, true)
	})
}
