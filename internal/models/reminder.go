package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReminderPriority represents the urgency of a reminder
type ReminderPriority string

const (
	ReminderPriorityHigh   ReminderPriority = "high"
	ReminderPriorityMedium ReminderPriority = "medium"
	ReminderPriorityLow    ReminderPriority = "low"
)

// ParseReminderPriority decodes a stored priority, failing on unknown values.
func ParseReminderPriority(s string) (ReminderPriority, error) {
	switch ReminderPriority(s) {
	case ReminderPriorityHigh, ReminderPriorityMedium, ReminderPriorityLow:
		return ReminderPriority(s), nil
	}
	return "", fmt.Errorf("unknown reminder priority %q", s)
}

// ReminderCategory tags a reminder with a life area.
type ReminderCategory string

const (
	ReminderCategoryBills     ReminderCategory = "bills"
	ReminderCategoryShopping  ReminderCategory = "shopping"
	ReminderCategoryHealth    ReminderCategory = "health"
	ReminderCategoryWork      ReminderCategory = "work"
	ReminderCategoryPersonal  ReminderCategory = "personal"
	ReminderCategoryFinancial ReminderCategory = "financial"
	ReminderCategoryGeneral   ReminderCategory = "general"
)

// ParseReminderCategory decodes a stored reminder category, failing on unknown values.
func ParseReminderCategory(s string) (ReminderCategory, error) {
	switch ReminderCategory(s) {
	case ReminderCategoryBills, ReminderCategoryShopping, ReminderCategoryHealth,
		ReminderCategoryWork, ReminderCategoryPersonal, ReminderCategoryFinancial,
		ReminderCategoryGeneral:
		return ReminderCategory(s), nil
	}
	return "", fmt.Errorf("unknown reminder category %q", s)
}

// RecurrenceType represents how a reminder repeats.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// ParseRecurrenceType decodes a stored recurrence type, failing on unknown values.
func ParseRecurrenceType(s string) (RecurrenceType, error) {
	switch RecurrenceType(s) {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return RecurrenceType(s), nil
	}
	return "", fmt.Errorf("unknown recurrence type %q", s)
}

// Recurrence describes a repeating reminder as a type plus an interval,
// stored in one TEXT column as "type:interval" (e.g. "weekly:2" for every
// two weeks). Decoding fails loudly on malformed or unrecognized values.
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
}

// String returns the column encoding of the recurrence.
func (r Recurrence) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.Interval)
}

// ParseRecurrence decodes the "type:interval" column encoding.
func ParseRecurrence(s string) (Recurrence, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Recurrence{}, fmt.Errorf("malformed recurrence %q", s)
	}

	typ, err := ParseRecurrenceType(parts[0])
	if err != nil {
		return Recurrence{}, err
	}

	interval, err := strconv.Atoi(parts[1])
	if err != nil || interval < 1 {
		return Recurrence{}, fmt.Errorf("malformed recurrence interval %q", parts[1])
	}

	return Recurrence{Type: typ, Interval: interval}, nil
}

// Value implements driver.Valuer.
func (r Recurrence) Value() (driver.Value, error) {
	if r.Type == "" {
		return nil, nil
	}
	if _, err := ParseRecurrenceType(string(r.Type)); err != nil {
		return nil, err
	}
	if r.Interval < 1 {
		return nil, fmt.Errorf("recurrence interval must be >= 1, got %d", r.Interval)
	}
	return r.String(), nil
}

// Scan implements sql.Scanner.
func (r *Recurrence) Scan(src interface{}) error {
	if src == nil {
		*r = Recurrence{}
		return nil
	}

	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Recurrence", src)
	}

	parsed, err := ParseRecurrence(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Reminder represents a scheduled prompt for the user. TimeOfDay is the
// wall-clock "HH:MM" the reminder should fire, kept separate from Date.
type Reminder struct {
	Base
	UserID      string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string           `gorm:"not null" json:"title"`
	Description string           `json:"description"`
	Date        time.Time        `gorm:"not null" json:"date"`
	TimeOfDay   string           `gorm:"size:5" json:"time_of_day"`
	Priority    ReminderPriority `gorm:"default:medium" json:"priority"`
	Category    ReminderCategory `gorm:"default:general" json:"category"`
	Completed   bool             `gorm:"default:false" json:"completed"`
	Recurrence  *Recurrence      `gorm:"type:text" json:"recurrence,omitempty"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
}
