package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"vehicle-parking-server/models"
)

// candidateBatch bounds how many spots one booking attempt will try to claim
// before reporting the lot as full.
const candidateBatch = 16

// BookingService implements the booking engine: spot allocation, release with
// fee computation, waitlist join and promotion, and notification
// acknowledgement. Every state-changing method runs in a single transaction.
type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// ReleaseReceipt summarises a completed release.
type ReleaseReceipt struct {
	Reservation models.Reservation `json:"reservation"`
	Hours       float64            `json:"hours"`
	Cost        float64            `json:"cost"`
	// NotifiedUserID is set when a waitlisted user was promoted.
	NotifiedUserID *uint `json:"notified_user_id,omitempty"`
}

// Book allocates one available spot in the lot to the user and opens a
// reservation. The spot is claimed with a conditional update so two requests
// racing for the last spot cannot both win it.
func (s *BookingService) Book(userID, lotID uint) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// One open reservation per user, across all lots
		var active models.Reservation
		err := tx.Where("user_id = ? AND left_at IS NULL", userID).First(&active).Error
		if err == nil {
			return ErrAlreadyReserved
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var candidates []models.ParkingSpot
		if err := tx.Where("lot_id = ? AND status = ?", lotID, models.SpotStatusAvailable).
			Order("id").
			Limit(candidateBatch).
			Find(&candidates).Error; err != nil {
			return err
		}

		var claimed *models.ParkingSpot
		for i := range candidates {
			ok, err := s.claimSpot(tx, candidates[i].ID)
			if err != nil {
				return err
			}
			if ok {
				claimed = &candidates[i]
				break
			}
		}
		if claimed == nil {
			return ErrNoCapacity
		}

		reservation = models.Reservation{
			SpotID:   claimed.ID,
			UserID:   userID,
			ParkedAt: time.Now().UTC(),
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

// claimSpot atomically flips a spot from Available to Occupied. A false return
// means somebody else got there first and the caller should try another spot.
func (s *BookingService) claimSpot(tx *gorm.DB, spotID uint) (bool, error) {
	res := tx.Model(&models.ParkingSpot{}).
		Where("id = ? AND status = ?", spotID, models.SpotStatusAvailable).
		Update("status", models.SpotStatusOccupied)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release closes the user's reservation, frees the spot and computes the fee.
// At most one waitlisted user for the lot is promoted into a notification.
func (s *BookingService) Release(userID, reservationID uint) (*ReleaseReceipt, error) {
	var receipt ReleaseReceipt

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		err := tx.Preload("Spot").Preload("Spot.Lot").
			Where("id = ? AND user_id = ? AND left_at IS NULL", reservationID, userID).
			First(&reservation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()
		hours, cost := computeFee(reservation.ParkedAt, now, reservation.Spot.Lot.PricePerHour)

		// left_at is set at most once; the IS NULL guard keeps a double
		// release from overwriting it
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND left_at IS NULL", reservation.ID).
			Update("left_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&models.ParkingSpot{}).
			Where("id = ?", reservation.SpotID).
			Update("status", models.SpotStatusAvailable).Error; err != nil {
			return err
		}

		notified, err := s.promoteNextWaitlisted(tx, &reservation.Spot.Lot)
		if err != nil {
			return err
		}

		reservation.LeftAt = &now
		receipt = ReleaseReceipt{
			Reservation:    reservation,
			Hours:          hours,
			Cost:           cost,
			NotifiedUserID: notified,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

// promoteNextWaitlisted notifies the oldest un-notified waitlist entry for the
// lot. Exactly one entry is promoted per release, never more.
func (s *BookingService) promoteNextWaitlisted(tx *gorm.DB, lot *models.ParkingLot) (*uint, error) {
	var entry models.Waitlist
	err := tx.Where("lot_id = ? AND notified = ?", lot.ID, false).
		Order("created_at, id").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	notification := models.Notification{
		UserID:  entry.UserID,
		LotID:   &lot.ID,
		Message: fmt.Sprintf("A parking spot has opened up at %s. Book soon to claim it.", lot.Name),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return nil, err
	}

	// notified flips exactly once
	res := tx.Model(&models.Waitlist{}).
		Where("id = ? AND notified = ?", entry.ID, false).
		Update("notified", true)
	if res.Error != nil {
		return nil, res.Error
	}

	return &entry.UserID, nil
}

// JoinWaitlist adds the user to the lot's waitlist unless an un-notified entry
// already exists. No capacity check is made: joining a lot that still has free
// spots is allowed.
func (s *BookingService) JoinWaitlist(userID, lotID uint) (*models.Waitlist, error) {
	var entry models.Waitlist

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.Waitlist
		err := tx.Where("lot_id = ? AND user_id = ? AND notified = ?", lotID, userID, false).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyWaitlisted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry = models.Waitlist{
			LotID:  lotID,
			UserID: userID,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
// Un-reading is not supported.
func (s *BookingService) MarkNotificationRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of the user as read
// and returns how many were flipped.
func (s *BookingService) MarkAllNotificationsRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// ActiveReservation returns the user's open reservation, or ErrNotFound.
func (s *BookingService) ActiveReservation(userID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.db.Preload("Spot").Preload("Spot.Lot").
		Where("user_id = ? AND left_at IS NULL", userID).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// History returns the user's reservations, newest first.
func (s *BookingService) History(userID uint) ([]models.Reservation, error) {
	var history []models.Reservation
	err := s.db.Preload("Spot").Preload("Spot.Lot").
		Where("user_id = ?", userID).
		Order("parked_at DESC").
		Find(&history).Error
	return history, err
}

// computeFee returns the elapsed fractional hours and the cost rounded to two
// decimals. Clock skew can make leftAt precede parkedAt; that yields 0.00
// rather than an error.
func computeFee(parkedAt, leftAt time.Time, pricePerHour float64) (hours, cost float64) {
	hours = leftAt.Sub(parkedAt).Seconds() / 3600
	if hours <= 0 {
		return 0, 0
	}
	cost = math.Round(hours*pricePerHour*100) / 100
	return hours, cost
}
