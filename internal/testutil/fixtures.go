package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kosh/internal/models"

	"gorm.io/gorm"
)

// TestPassword is the plaintext password used for every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// HashTestPassword returns the hex SHA-256 digest of a password, matching the
// storage format used by the auth repository.
func HashTestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         fmt.Sprintf("Test User %d", nextID()),
		Email:        email,
		PasswordHash: HashTestPassword(TestPassword),
		Currency:     "USD",
		Timezone:     "UTC",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Type:     categoryType,
		Icon:     "📁",
		Color:    "#808080",
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTemplateCategory creates a default category template, owned by no
// user, like the ones seeded at migration time.
func CreateTestTemplateCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      fmt.Sprintf("Template Category %d", nextID()),
		Type:      categoryType,
		Icon:      "📁",
		Color:     "#808080",
		IsDefault: true,
		IsActive:  true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create template category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     amount,
		Title:      fmt.Sprintf("Test Transaction %d", nextID()),
		Date:       time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active monthly budget for the given category,
// valid for thirty days starting yesterday.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount float64) *models.Budget {
	t.Helper()

	start := time.Now().AddDate(0, 0, -1)
	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test Budget %d", nextID()),
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 30),
		IsActive:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestReminder creates an active reminder due tomorrow.
func CreateTestReminder(t *testing.T, db *gorm.DB, userID string) *models.Reminder {
	t.Helper()

	reminder := &models.Reminder{
		UserID:    userID,
		Title:     fmt.Sprintf("Test Reminder %d", nextID()),
		Date:      time.Now().AddDate(0, 0, 1),
		TimeOfDay: "09:00",
		Priority:  models.ReminderPriorityMedium,
		Category:  models.ReminderCategoryGeneral,
		IsActive:  true,
	}
	if err := db.Create(reminder).Error; err != nil {
		t.Fatalf("failed to create test reminder: %v", err)
	}
	return reminder
}

// CreateTestNote creates an unarchived note.
func CreateTestNote(t *testing.T, db *gorm.DB, userID string) *models.Note {
	t.Helper()

	note := &models.Note{
		UserID:  userID,
		Title:   fmt.Sprintf("Test Note %d", nextID()),
		Content: "test content",
	}
	if err := db.Create(note).Error; err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	return note
}
