package models

// Note represents a free-form note attached to a user.
type Note struct {
	Base
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string     `gorm:"not null" json:"title"`
	Content  string     `json:"content"`
	Color    string     `json:"color"`
	Tags     StringList `gorm:"type:text" json:"tags"`
	Pinned   bool       `gorm:"default:false" json:"pinned"`
	Archived bool       `gorm:"default:false" json:"archived"`
}
