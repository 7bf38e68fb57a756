package models

import (
	"time"
)

// Waitlist is a user's request to be told when a lot frees a spot.
// Entries are consumed oldest-first; Notified flips exactly once.
type Waitlist struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LotID     uint      `json:"lot_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	Notified  bool      `json:"notified" gorm:"default:false"`

	// Relationships
	Lot  ParkingLot `json:"lot,omitempty" gorm:"foreignKey:LotID"`
	User User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Waitlist model
func (Waitlist) TableName() string {
	return "waitlist_entries"
}
