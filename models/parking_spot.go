package models

type SpotStatus string

const (
	SpotStatusAvailable SpotStatus = "A"
	SpotStatusOccupied  SpotStatus = "O"
)

type ParkingSpot struct {
	ID     uint       `json:"id" gorm:"primaryKey"`
	LotID  uint       `json:"lot_id" gorm:"not null;index"`
	Status SpotStatus `json:"status" gorm:"type:varchar(1);not null;default:'A';check:status IN ('A','O')"`

	// Relationships
	Lot ParkingLot `json:"lot,omitempty" gorm:"foreignKey:LotID"`
}

// TableName specifies the table name for the ParkingSpot model
func (ParkingSpot) TableName() string {
	return "parking_spots"
}

// IsAvailable reports whether the spot can be booked
func (s *ParkingSpot) IsAvailable() bool {
	return s.Status == SpotStatusAvailable
}
