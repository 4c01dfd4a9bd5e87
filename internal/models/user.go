package models

// User represents a registered account holder.
// PasswordHash is the hex-encoded SHA-256 digest of the password; it is
// never serialized in responses.
type User struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `gorm:"size:64;not null" json:"-"`
	PhotoURL     string `json:"photo_url"`
	Currency     string `gorm:"size:3;default:USD" json:"currency"`
	Timezone     string `gorm:"default:UTC" json:"timezone"`
	Verified     bool   `gorm:"default:false" json:"verified"`
}
