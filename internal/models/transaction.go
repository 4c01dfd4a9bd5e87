package models

import (
	"fmt"
	"time"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ParseTransactionType decodes a stored transaction type, failing on unknown values.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction represents a financial transaction. Date is when the money
// moved; CreatedAt is when the row was recorded.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID    string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        float64         `gorm:"not null" json:"amount"`
	Title         string          `gorm:"not null" json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	ReceiptURL    string          `json:"receipt_url"`
	PaymentMethod string          `json:"payment_method"`
	Tags          StringList      `gorm:"type:text" json:"tags"`
	Date          time.Time       `gorm:"not null;index" json:"date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
