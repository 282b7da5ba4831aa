package entity

import "time"

// User is an operator account. Role and AllowedPlants are comma-joined
// lists (module rights and plant names respectively).
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Password      string    `json:"password" gorm:"size:64;not null"`
	ContactNumber string    `json:"contact_number" gorm:"size:20;not null"`
	Role          string    `json:"role" gorm:"size:256"`
	AllowedPlants string    `json:"allowed_plants" gorm:"size:512"`
	IsDeleted     bool      `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
