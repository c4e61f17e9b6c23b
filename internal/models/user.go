package models

// User is the owner of all household data. Registration and login live in an
// external identity service; this table only anchors ownership and the
// password hash used by that service.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
