package models

import "fmt"

// CategoryType represents the type of category.
// A category's type is immutable after creation.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType decodes a stored category type, failing on unknown values.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case CategoryTypeIncome, CategoryTypeExpense:
		return CategoryType(s), nil
	}
	return "", fmt.Errorf("unknown category type %q", s)
}

// Category represents a transaction category. Rows with an empty UserID are
// the shared default templates copied per-user at registration; user-owned
// categories are soft-deleted via IsActive to preserve transaction history.
type Category struct {
	Base
	UserID    string       `gorm:"type:uuid;index" json:"user_id"`
	Name      string       `gorm:"not null" json:"name"`
	Type      CategoryType `gorm:"not null" json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`
	ParentID  *string      `gorm:"type:uuid" json:"parent_id,omitempty"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
