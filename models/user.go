package models

import (
	"time"
)

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	FullName        string    `json:"full_name" gorm:"size:120"`
	Address         string    `json:"address" gorm:"size:255"`
	Pincode         string    `json:"pincode" gorm:"size:10"`
	IsAdmin         bool      `json:"is_admin" gorm:"default:false"`
	ProfileImageURL *string   `json:"profile_image_url" gorm:"size:255"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Reservations  []Reservation  `json:"reservations,omitempty" gorm:"foreignKey:UserID"`
	Waitlist      []Waitlist     `json:"waitlist,omitempty" gorm:"foreignKey:UserID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
