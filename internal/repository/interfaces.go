// Package repository implements the data access layer: one repository per
// entity family, each wrapping GORM queries against the embedded database,
// mapping storage failures to AppErrors, and publishing change signals that
// back the Observe streams.
package repository

import (
	"context"
	"time"

	"kosh/internal/models"
	"kosh/internal/pagination"
)

// Session is a point-in-time snapshot of the persisted login state.
type Session struct {
	UserID   string
	LoggedIn bool
}

// RegisterParams holds the fields collected at registration.
type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Currency string
	Timezone string
}

// AuthRepository defines the authentication and session contract.
type AuthRepository interface {
	// Login verifies credentials and persists the session on success.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// Register creates the user, provisions default settings, copies the
	// default category templates under the new user, and persists the session.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)
	// ChangePassword re-verifies the old password before storing a new hash.
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// Logout clears the persisted session.
	Logout(ctx context.Context) error
	// Session reads the persisted login state synchronously.
	Session() Session
}

// UserRepository defines the user profile contract.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, phone, photoURL string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id, currency, timezone string) (*models.User, error)
	// Delete removes the user and cascades to all owned rows.
	Delete(ctx context.Context, id string) error
	Observe(ctx context.Context, id string) <-chan *models.User
}

// CategoryRepository defines the category contract. GetByUser and
// GetByUserAndType return active categories only; deactivated categories
// stay in place so historical transactions keep a valid reference.
type CategoryRepository interface {
	Create(ctx context.Context, userID, name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error)
	GetByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	GetByUser(ctx context.Context, userID string) ([]models.Category, error)
	GetByUserAndType(ctx context.Context, userID string, categoryType models.CategoryType) ([]models.Category, error)
	GetSubcategories(ctx context.Context, userID, parentID string) ([]models.Category, error)
	// DefaultTemplates returns the shared seed catalog, optionally filtered by type.
	DefaultTemplates(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error)
	Update(ctx context.Context, userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error)
	// Deactivate soft-deletes the category.
	Deactivate(ctx context.Context, userID, categoryID string) error
	// Delete hard-deletes the category; it fails while transactions reference it.
	Delete(ctx context.Context, userID, categoryID string) error
	Observe(ctx context.Context, userID string) <-chan []models.Category
}

// AddTransactionParams holds the fields of a new transaction.
type AddTransactionParams struct {
	UserID        string
	CategoryID    string
	Type          models.TransactionType
	Amount        float64
	Title         string
	Description   string
	Location      string
	ReceiptURL    string
	PaymentMethod string
	Tags          models.StringList
	Date          time.Time
}

// UpdateTransactionParams holds the mutable fields of a transaction.
// Nil pointers leave the stored value untouched.
type UpdateTransactionParams struct {
	CategoryID    *string
	Amount        *float64
	Title         *string
	Description   *string
	Location      *string
	ReceiptURL    *string
	PaymentMethod *string
	Tags          *models.StringList
	Date          *time.Time
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *float64
	MaxAmount  *float64
}

// CategorySum is one row of a grouped-by-category aggregate.
type CategorySum struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

// TransactionRepository defines the transaction contract.
type TransactionRepository interface {
	// Add persists the transaction. For expense transactions it additionally
	// increments the matching active budget's spent amount; that side effect
	// is best-effort and never fails the primary write.
	Add(ctx context.Context, params AddTransactionParams) (*models.Transaction, error)
	GetByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	List(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	Search(ctx context.Context, userID, query string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	Update(ctx context.Context, userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error)
	Delete(ctx context.Context, userID, transactionID string) error
	SumByType(ctx context.Context, userID string, transactionType models.TransactionType, from, to time.Time) (float64, error)
	SumByCategory(ctx context.Context, userID string, transactionType models.TransactionType, from, to time.Time) ([]CategorySum, error)
	Observe(ctx context.Context, userID string) <-chan []models.Transaction
}

// CreateBudgetParams holds the fields of a new budget.
type CreateBudgetParams struct {
	UserID     string
	CategoryID string
	Name       string
	Amount     float64
	Period     models.BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
}

// BudgetAlert pairs a budget with its utilization classification.
type BudgetAlert struct {
	Budget      models.Budget          `json:"budget"`
	Utilization float64                `json:"utilization"`
	Type        models.BudgetAlertType `json:"type"`
}

// BudgetRepository defines the budget contract.
type BudgetRepository interface {
	Create(ctx context.Context, params CreateBudgetParams) (*models.Budget, error)
	GetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	GetByUser(ctx context.Context, userID string, activeOnly bool) ([]models.Budget, error)
	// GetActiveAt returns active budgets whose validity window contains at.
	GetActiveAt(ctx context.Context, userID string, at time.Time) ([]models.Budget, error)
	GetByCategoryAndPeriod(ctx context.Context, userID, categoryID string, period models.BudgetPeriod) ([]models.Budget, error)
	Update(ctx context.Context, userID, budgetID string, amount *float64, period *models.BudgetPeriod, endDate *time.Time) (*models.Budget, error)
	// AddToSpent increments the budget's accumulated spent amount.
	AddToSpent(ctx context.Context, userID, budgetID string, delta float64) error
	Deactivate(ctx context.Context, userID, budgetID string) error
	Delete(ctx context.Context, userID, budgetID string) error
	// NearLimit returns active budgets with spent >= 80% of the allocation.
	NearLimit(ctx context.Context, userID string) ([]models.Budget, error)
	// Alerts classifies active budgets: >=100% exceeded, >=80% warning.
	Alerts(ctx context.Context, userID string) ([]BudgetAlert, error)
	Observe(ctx context.Context, userID string) <-chan []models.Budget
}

// CreateReminderParams holds the fields of a new reminder.
type CreateReminderParams struct {
	UserID      string
	Title       string
	Description string
	Date        time.Time
	TimeOfDay   string
	Priority    models.ReminderPriority
	Category    models.ReminderCategory
	Recurrence  *models.Recurrence
}

// UpdateReminderParams holds the mutable fields of a reminder.
// Nil pointers leave the stored value untouched.
type UpdateReminderParams struct {
	Title       *string
	Description *string
	Date        *time.Time
	TimeOfDay   *string
	Priority    *models.ReminderPriority
	Category    *models.ReminderCategory
	Recurrence  *models.Recurrence
}

// ReminderRepository defines the reminder contract.
type ReminderRepository interface {
	Create(ctx context.Context, params CreateReminderParams) (*models.Reminder, error)
	GetByID(ctx context.Context, userID, reminderID string) (*models.Reminder, error)
	GetByUser(ctx context.Context, userID string) ([]models.Reminder, error)
	// GetPending returns active, incomplete reminders due at or before the given time.
	GetPending(ctx context.Context, userID string, due time.Time) ([]models.Reminder, error)
	GetByCategory(ctx context.Context, userID string, category models.ReminderCategory) ([]models.Reminder, error)
	Update(ctx context.Context, userID, reminderID string, params UpdateReminderParams) (*models.Reminder, error)
	Complete(ctx context.Context, userID, reminderID string) error
	Delete(ctx context.Context, userID, reminderID string) error
	Observe(ctx context.Context, userID string) <-chan []models.Reminder
}

// UpdateNoteParams holds the mutable fields of a note.
// Nil pointers leave the stored value untouched.
type UpdateNoteParams struct {
	Title   *string
	Content *string
	Color   *string
	Tags    *models.StringList
}

// NoteRepository defines the note contract. GetByUser returns unarchived
// notes, pinned first.
type NoteRepository interface {
	Create(ctx context.Context, userID, title, content, color string, tags models.StringList) (*models.Note, error)
	GetByID(ctx context.Context, userID, noteID string) (*models.Note, error)
	GetByUser(ctx context.Context, userID string) ([]models.Note, error)
	Search(ctx context.Context, userID, query string) ([]models.Note, error)
	Update(ctx context.Context, userID, noteID string, params UpdateNoteParams) (*models.Note, error)
	SetPinned(ctx context.Context, userID, noteID string, pinned bool) error
	SetArchived(ctx context.Context, userID, noteID string, archived bool) error
	Delete(ctx context.Context, userID, noteID string) error
	Observe(ctx context.Context, userID string) <-chan []models.Note
}

// UpdateSettingsParams holds the mutable settings fields.
// Nil pointers leave the stored value untouched.
type UpdateSettingsParams struct {
	Currency             *string
	Language             *string
	Timezone             *string
	DateFormat           *string
	TimeFormat           *string
	NotificationsEnabled *bool
	BudgetAlertsEnabled  *bool
	Theme                *models.ThemeMode
	AutoBackup           *bool
}

// SettingsRepository defines the settings contract. Get provisions a
// default row on first access.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Update(ctx context.Context, userID string, params UpdateSettingsParams) (*models.Settings, error)
	UpdateTheme(ctx context.Context, userID string, theme models.ThemeMode) error
	Observe(ctx context.Context, userID string) <-chan *models.Settings
}
