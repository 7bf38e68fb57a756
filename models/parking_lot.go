package models

import (
	"time"
)

type ParkingLot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	PricePerHour float64   `json:"price_per_hour" gorm:"not null"`
	Address      string    `json:"address" gorm:"size:200;not null"`
	Pincode      string    `json:"pincode" gorm:"size:10;not null"`
	MaxSpots     int       `json:"max_spots" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Spots []ParkingSpot `json:"spots,omitempty" gorm:"foreignKey:LotID"`
}

// TableName specifies the table name for the ParkingLot model
func (ParkingLot) TableName() string {
	return "parking_lots"
}
