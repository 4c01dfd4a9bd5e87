package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "kosh/internal/errors"
	"kosh/internal/logger"
	"kosh/internal/models"
	"kosh/internal/pagination"
	"kosh/internal/watch"
)

// transactionRepository implements TransactionRepository.
type transactionRepository struct {
	db      *gorm.DB
	budgets BudgetRepository
	broker  *watch.Broker
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *gorm.DB, budgets BudgetRepository, broker *watch.Broker) TransactionRepository {
	return &transactionRepository{db: db, budgets: budgets, broker: broker}
}

// Add persists a transaction. Expense transactions additionally bump the
// matching active budget's spent amount. The two writes are deliberately
// separate statements: a budget-update failure is logged and swallowed so
// the recorded transaction is never rolled back by it.
func (r *transactionRepository) Add(ctx context.Context, params AddTransactionParams) (*models.Transaction, error) {
	if params.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if params.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if _, err := models.ParseTransactionType(string(params.Type)); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	db := r.db.WithContext(ctx)

	// The referenced category must exist for this user; its type is not
	// validated against the transaction's type.
	var category models.Category
	err := db.Where("id = ? AND user_id = ?", params.CategoryID, params.UserID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:        params.UserID,
		CategoryID:    params.CategoryID,
		Type:          params.Type,
		Amount:        params.Amount,
		Title:         params.Title,
		Description:   params.Description,
		Location:      params.Location,
		ReceiptURL:    params.ReceiptURL,
		PaymentMethod: params.PaymentMethod,
		Tags:          params.Tags,
		Date:          date,
	}
	if err := db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transaction.Type == models.TransactionTypeExpense {
		r.applyBudgetSpend(ctx, transaction)
	}

	r.broker.Notify(tableTransactions)
	return transaction, nil
}

// applyBudgetSpend finds the active budget covering the transaction's date
// and category and increments its spent amount. Best-effort: every failure
// path logs and returns.
func (r *transactionRepository) applyBudgetSpend(ctx context.Context, tx *models.Transaction) {
	budgets, err := r.budgets.GetActiveAt(ctx, tx.UserID, tx.Date)
	if err != nil {
		logger.Get().Warnw("budget lookup failed, spent amount not updated",
			"transaction_id", tx.ID, "error", err)
		return
	}

	for _, b := range budgets {
		if b.CategoryID != tx.CategoryID {
			continue
		}
		if err := r.budgets.AddToSpent(ctx, tx.UserID, b.ID, tx.Amount); err != nil {
			logger.Get().Warnw("budget spent update failed",
				"transaction_id", tx.ID, "budget_id", b.ID, "error", err)
		}
		return
	}
}

// GetByID retrieves a transaction by id for a specific user.
func (r *transactionRepository) GetByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// List returns a paginated, filtered list of the user's transactions,
// newest first.
func (r *transactionRepository) List(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// Search returns transactions whose title or description contains the query.
func (r *transactionRepository) Search(ctx context.Context, userID, query string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	pattern := "%" + query + "%"

	base := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Update updates a transaction's mutable fields. It does not retroactively
// adjust budget spent amounts.
func (r *transactionRepository) Update(ctx context.Context, userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error) {
	transaction, err := r.GetByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if params.CategoryID != nil {
		if _, err := r.categoryForUser(ctx, userID, *params.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *params.CategoryID
	}
	if params.Amount != nil {
		if *params.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *params.Amount
	}
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}
	if params.Location != nil {
		updates["location"] = *params.Location
	}
	if params.ReceiptURL != nil {
		updates["receipt_url"] = *params.ReceiptURL
	}
	if params.PaymentMethod != nil {
		updates["payment_method"] = *params.PaymentMethod
	}
	if params.Tags != nil {
		updates["tags"] = *params.Tags
	}
	if params.Date != nil {
		updates["date"] = *params.Date
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r.broker.Notify(tableTransactions)
	}

	return transaction, nil
}

func (r *transactionRepository) categoryForUser(ctx context.Context, userID, categoryID string) (*models.Category, error) {
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

// Delete removes a transaction. Budget spent amounts are not adjusted.
func (r *transactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	transaction, err := r.GetByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.broker.Notify(tableTransactions)
	return nil
}

// SumByType returns the total amount of one transaction type in a date range.
func (r *transactionRepository) SumByType(ctx context.Context, userID string, transactionType models.TransactionType, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, transactionType, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// SumByCategory returns per-category totals of one transaction type in a
// date range, largest first.
func (r *transactionRepository) SumByCategory(ctx context.Context, userID string, transactionType models.TransactionType, from, to time.Time) ([]CategorySum, error) {
	var sums []CategorySum
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("transactions.category_id AS category_id, categories.name AS category_name, SUM(transactions.amount) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.date BETWEEN ? AND ?",
			userID, transactionType, from, to).
		Group("transactions.category_id, categories.name").
		Order("total DESC").
		Scan(&sums).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sums, nil
}

// Observe streams the user's most recent transactions.
func (r *transactionRepository) Observe(ctx context.Context, userID string) <-chan []models.Transaction {
	return observe(ctx, r.broker, []string{tableTransactions}, func(ctx context.Context) ([]models.Transaction, error) {
		var transactions []models.Transaction
		err := r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("date DESC").
			Limit(100).
			Find(&transactions).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return transactions, nil
	})
}
