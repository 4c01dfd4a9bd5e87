package database

import (
	"fmt"

	"kosh/internal/models"
)

// defaultCategory describes one entry of the fixed template catalog.
type defaultCategory struct {
	Name  string
	Type  models.CategoryType
	Icon  string
	Color string
}

// defaultCatalog is the shared template catalog seeded at first database
// creation. Templates carry an empty UserID and are copied per-user at
// registration.
var defaultCatalog = []defaultCategory{
	{"Food & Dining", models.CategoryTypeExpense, "🍽️", "#FF6B6B"},
	{"Transport", models.CategoryTypeExpense, "🚗", "#4ECDC4"},
	{"Shopping", models.CategoryTypeExpense, "🛍️", "#FFD93D"},
	{"Entertainment", models.CategoryTypeExpense, "🎬", "#A78BFA"},
	{"Bills & Utilities", models.CategoryTypeExpense, "💡", "#F59E0B"},
	{"Health", models.CategoryTypeExpense, "🏥", "#34D399"},
	{"Education", models.CategoryTypeExpense, "📚", "#60A5FA"},
	{"Other Expenses", models.CategoryTypeExpense, "📦", "#9CA3AF"},
	{"Salary", models.CategoryTypeIncome, "💰", "#10B981"},
	{"Business", models.CategoryTypeIncome, "🏢", "#3B82F6"},
	{"Investment", models.CategoryTypeIncome, "📈", "#8B5CF6"},
	{"Gift", models.CategoryTypeIncome, "🎁", "#EC4899"},
	{"Other Income", models.CategoryTypeIncome, "💵", "#6B7280"},
}

// seedDefaultCategories inserts the template catalog if it is not present.
func (m *Manager) seedDefaultCategories() error {
	var count int64
	if err := m.db.Model(&models.Category{}).
		Where("user_id = ? AND is_default = ?", "", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check default categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultCatalog {
		category := &models.Category{
			UserID:    "",
			Name:      c.Name,
			Type:      c.Type,
			Icon:      c.Icon,
			Color:     c.Color,
			IsDefault: true,
			IsActive:  true,
		}
		if err := m.db.Create(category).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}
