package models

import (
	"time"
)

// Reservation records one user occupying one spot from ParkedAt until LeftAt.
// A reservation with LeftAt == nil is open; LeftAt is set exactly once on
// release and never cleared.
type Reservation struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	SpotID   uint       `json:"spot_id" gorm:"not null;index"`
	UserID   uint       `json:"user_id" gorm:"not null;index"`
	ParkedAt time.Time  `json:"parked_at" gorm:"not null"`
	LeftAt   *time.Time `json:"left_at"`

	// Relationships
	Spot ParkingSpot `json:"spot,omitempty" gorm:"foreignKey:SpotID"`
	User User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Reservation model
func (Reservation) TableName() string {
	return "reservations"
}

// IsOpen reports whether the reservation has not been released yet
func (r *Reservation) IsOpen() bool {
	return r.LeftAt == nil
}
