package models

import "fmt"

// ThemeMode represents the UI theme preference
type ThemeMode string

const (
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
	ThemeModeSystem ThemeMode = "system"
)

// ParseThemeMode decodes a stored theme mode, failing on unknown values.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch ThemeMode(s) {
	case ThemeModeLight, ThemeModeDark, ThemeModeSystem:
		return ThemeMode(s), nil
	}
	return "", fmt.Errorf("unknown theme mode %q", s)
}

// Settings holds per-user preferences, one row per user. Rows are created
// lazily with defaults on first access.
type Settings struct {
	Base
	UserID               string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Currency             string    `gorm:"size:3;default:USD" json:"currency"`
	Language             string    `gorm:"size:5;default:en" json:"language"`
	Timezone             string    `gorm:"default:UTC" json:"timezone"`
	DateFormat           string    `gorm:"default:2006-01-02" json:"date_format"`
	TimeFormat           string    `gorm:"default:15:04" json:"time_format"`
	NotificationsEnabled bool      `gorm:"default:true" json:"notifications_enabled"`
	BudgetAlertsEnabled  bool      `gorm:"default:true" json:"budget_alerts_enabled"`
	Theme                ThemeMode `gorm:"default:system" json:"theme"`
	AutoBackup           bool      `gorm:"default:false" json:"auto_backup"`
}

// DefaultSettings returns the settings row provisioned for a new user.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:               userID,
		Currency:             "USD",
		Language:             "en",
		Timezone:             "UTC",
		DateFormat:           "2006-01-02",
		TimeFormat:           "15:04",
		NotificationsEnabled: true,
		BudgetAlertsEnabled:  true,
		Theme:                ThemeModeSystem,
		AutoBackup:           false,
	}
}
