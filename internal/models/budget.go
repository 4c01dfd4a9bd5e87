package models

import (
	"fmt"
	"time"
)

// BudgetPeriod represents the recurrence granularity of a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

// ParseBudgetPeriod decodes a stored budget period, failing on unknown values.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	switch BudgetPeriod(s) {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodQuarterly, BudgetPeriodYearly:
		return BudgetPeriod(s), nil
	}
	return "", fmt.Errorf("unknown budget period %q", s)
}

// BudgetAlertType classifies how far a budget's spending has progressed.
type BudgetAlertType string

const (
	BudgetAlertWarning  BudgetAlertType = "warning"
	BudgetAlertExceeded BudgetAlertType = "exceeded"
	// BudgetAlertCritical is reserved for a >120% tier; alert generation
	// does not emit it.
	BudgetAlertCritical BudgetAlertType = "critical"
)

// Budget represents a spending plan for a category over a validity window.
// Spent accumulates as matching expense transactions are recorded.
type Budget struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string       `gorm:"type:uuid;not null;index" json:"category_id"`
	Name       string       `gorm:"not null" json:"name"`
	Amount     float64      `gorm:"not null" json:"amount"`
	Spent      float64      `gorm:"default:0" json:"spent"`
	Period     BudgetPeriod `gorm:"not null" json:"period"`
	StartDate  time.Time    `gorm:"not null" json:"start_date"`
	EndDate    time.Time    `gorm:"not null" json:"end_date"`
	IsActive   bool         `gorm:"default:true" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Utilization returns spent as a percentage of the allocated amount.
func (b *Budget) Utilization() float64 {
	if b.Amount <= 0 {
		return 0
	}
	return b.Spent / b.Amount * 100
}

// Contains reports whether t falls inside the budget's validity window.
func (b *Budget) Contains(t time.Time) bool {
	return !t.Before(b.StartDate) && !t.After(b.EndDate)
}
