package models

import (
	"time"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	LotID     *uint     `json:"lot_id"`
	Message   string    `json:"message" gorm:"size:500;not null"`
	Read      bool      `json:"read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lot  *ParkingLot `json:"lot,omitempty" gorm:"foreignKey:LotID"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
