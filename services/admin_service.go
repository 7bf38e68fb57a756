package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"vehicle-parking-server/models"
)

// AdminService covers lot and user management. Deletes are explicit ordered
// sequences (children before parents) inside one transaction instead of
// relying on storage-level cascades.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// LotInput carries the lot fields accepted from the admin forms.
type LotInput struct {
	Name         string  `json:"name" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Pincode      string  `json:"pincode" binding:"required"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gte=0"`
	MaxSpots     int     `json:"max_spots" binding:"required,gte=0"`
}

// CreateLot creates the lot and fans out MaxSpots spots in the same
// transaction.
func (s *AdminService) CreateLot(input LotInput) (*models.ParkingLot, error) {
	lot := models.ParkingLot{
		Name:         input.Name,
		Address:      input.Address,
		Pincode:      input.Pincode,
		PricePerHour: input.PricePerHour,
		MaxSpots:     input.MaxSpots,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lot).Error; err != nil {
			return err
		}
		for i := 0; i < input.MaxSpots; i++ {
			if err := tx.Create(&models.ParkingSpot{LotID: lot.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lot, nil
}

// UpdateLot updates lot fields and resizes the spot pool. Growing adds
// Available spots; shrinking removes Available spots only and fails with
// ErrSpotsOccupied when occupied spots would have to go.
func (s *AdminService) UpdateLot(lotID uint, input LotInput) (*models.ParkingLot, error) {
	var lot models.ParkingLot

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var current int64
		if err := tx.Model(&models.ParkingSpot{}).Where("lot_id = ?", lotID).Count(&current).Error; err != nil {
			return err
		}

		switch delta := input.MaxSpots - int(current); {
		case delta > 0:
			for i := 0; i < delta; i++ {
				if err := tx.Create(&models.ParkingSpot{LotID: lotID}).Error; err != nil {
					return err
				}
			}
		case delta < 0:
			var removable []models.ParkingSpot
			if err := tx.Where("lot_id = ? AND status = ?", lotID, models.SpotStatusAvailable).
				Order("id DESC").
				Limit(-delta).
				Find(&removable).Error; err != nil {
				return err
			}
			if len(removable) < -delta {
				return ErrSpotsOccupied
			}
			ids := make([]uint, 0, len(removable))
			for _, spot := range removable {
				ids = append(ids, spot.ID)
			}
			// Closed reservations may still reference these spots; drop them
			// first to keep referential integrity
			if err := tx.Where("spot_id IN ?", ids).Delete(&models.Reservation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.ParkingSpot{}).Error; err != nil {
				return err
			}
		}

		lot.Name = input.Name
		lot.Address = input.Address
		lot.Pincode = input.Pincode
		lot.PricePerHour = input.PricePerHour
		lot.MaxSpots = input.MaxSpots
		return tx.Save(&lot).Error
	})
	if err != nil {
		return nil, err
	}

	return &lot, nil
}

// DeleteLot removes a lot and everything under it: open reservations are
// force-closed, then reservations, waitlist entries, spots and finally the lot
// are deleted. Notifications survive but lose their lot reference.
func (s *AdminService) DeleteLot(lotID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var spotIDs []uint
		if err := tx.Model(&models.ParkingSpot{}).Where("lot_id = ?", lotID).
			Pluck("id", &spotIDs).Error; err != nil {
			return err
		}

		if len(spotIDs) > 0 {
			now := time.Now().UTC()
			if err := tx.Model(&models.Reservation{}).
				Where("spot_id IN ? AND left_at IS NULL", spotIDs).
				Update("left_at", now).Error; err != nil {
				return err
			}
			if err := tx.Where("spot_id IN ?", spotIDs).Delete(&models.Reservation{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("lot_id = ?", lotID).Delete(&models.Waitlist{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).Where("lot_id = ?", lotID).
			Update("lot_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("lot_id = ?", lotID).Delete(&models.ParkingSpot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ParkingLot{}, lotID).Error
	})
}

// DeleteUser removes a non-admin user and their dependent rows. The spot of an
// open reservation is freed first so occupancy stays consistent with open
// reservations.
func (s *AdminService) DeleteUser(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if user.IsAdmin {
			return ErrAdminProtected
		}

		var openSpotIDs []uint
		if err := tx.Model(&models.Reservation{}).
			Where("user_id = ? AND left_at IS NULL", userID).
			Pluck("spot_id", &openSpotIDs).Error; err != nil {
			return err
		}
		if len(openSpotIDs) > 0 {
			if err := tx.Model(&models.ParkingSpot{}).
				Where("id IN ?", openSpotIDs).
				Update("status", models.SpotStatusAvailable).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Waitlist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
