package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-parking-server/models"
)

func TestCreateLotFansOutSpots(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)

	lot, err := svc.CreateLot(LotInput{
		Name:         "Downtown",
		Address:      "5 Main Street",
		Pincode:      "560001",
		PricePerHour: 12.5,
		MaxSpots:     4,
	})
	require.NoError(t, err)

	var spots int64
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.ID).Count(&spots).Error)
	assert.EqualValues(t, 4, spots)

	var available int64
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lot.ID, models.SpotStatusAvailable).
		Count(&available).Error)
	assert.EqualValues(t, 4, available, "new spots start available")
}

func TestUpdateLotGrows(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	lot := createLot(t, db, "Downtown", 10.0, 2)

	updated, err := svc.UpdateLot(lot.ID, LotInput{
		Name:         "Downtown",
		Address:      lot.Address,
		Pincode:      lot.Pincode,
		PricePerHour: 11.0,
		MaxSpots:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MaxSpots)
	assert.Equal(t, 11.0, updated.PricePerHour)

	var spots int64
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.ID).Count(&spots).Error)
	assert.EqualValues(t, 5, spots)
}

func TestUpdateLotShrinksAvailableSpotsOnly(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db)
	booking := NewBookingService(db)
	user := createUser(t, db, "alice", false)
	lot := createLot(t, db, "Downtown", 10.0, 3)

	reservation, err := booking.Book(user.ID, lot.ID)
	require.NoError(t, err)

	updated, err := admin.UpdateLot(lot.ID, LotInput{
		Name:         lot.Name,
		Address:      lot.Address,
		Pincode:      lot.Pincode,
		PricePerHour: lot.PricePerHour,
		MaxSpots:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MaxSpots)

	// The occupied spot must be the survivor
	var remaining []models.ParkingSpot
	require.NoError(t, db.Where("lot_id = ?", lot.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, reservation.SpotID, remaining[0].ID)
}

func TestUpdateLotShrinkBlockedByOccupiedSpots(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db)
	booking := NewBookingService(db)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)
	lot := createLot(t, db, "Downtown", 10.0, 2)

	_, err := booking.Book(alice.ID, lot.ID)
	require.NoError(t, err)
	_, err = booking.Book(bob.ID, lot.ID)
	require.NoError(t, err)

	// Both spots occupied; shrinking to 1 would have to drop one of them
	_, err = admin.UpdateLot(lot.ID, LotInput{
		Name:         lot.Name,
		Address:      lot.Address,
		Pincode:      lot.Pincode,
		PricePerHour: lot.PricePerHour,
		MaxSpots:     1,
	})
	assert.ErrorIs(t, err, ErrSpotsOccupied)

	var spots int64
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.ID).Count(&spots).Error)
	assert.EqualValues(t, 2, spots, "a failed shrink changes nothing")
}

func TestDeleteLotRemovesEverythingUnderIt(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db)
	booking := NewBookingService(db)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)
	lot := createLot(t, db, "Downtown", 10.0, 1)

	_, err := booking.Book(alice.ID, lot.ID)
	require.NoError(t, err)
	_, err = booking.JoinWaitlist(bob.ID, lot.ID)
	require.NoError(t, err)

	notification := models.Notification{
		UserID:  bob.ID,
		LotID:   &lot.ID,
		Message: "A parking spot has opened up at Downtown. Book soon to claim it.",
	}
	require.NoError(t, db.Create(&notification).Error)

	require.NoError(t, admin.DeleteLot(lot.ID))

	var lots, spots, reservations, waitlist int64
	require.NoError(t, db.Model(&models.ParkingLot{}).Count(&lots).Error)
	require.NoError(t, db.Model(&models.ParkingSpot{}).Count(&spots).Error)
	require.NoError(t, db.Model(&models.Reservation{}).Count(&reservations).Error)
	require.NoError(t, db.Model(&models.Waitlist{}).Count(&waitlist).Error)
	assert.EqualValues(t, 0, lots)
	assert.EqualValues(t, 0, spots)
	assert.EqualValues(t, 0, reservations)
	assert.EqualValues(t, 0, waitlist)

	// The notification itself survives without its lot reference
	var kept models.Notification
	require.NoError(t, db.First(&kept, notification.ID).Error)
	assert.Nil(t, kept.LotID)
}

func TestDeleteLotUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)

	assert.ErrorIs(t, svc.DeleteLot(999), ErrNotFound)
}

func TestDeleteUserFreesOccupiedSpot(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db)
	booking := NewBookingService(db)
	user := createUser(t, db, "alice", false)
	lot := createLot(t, db, "Downtown", 10.0, 1)

	reservation, err := booking.Book(user.ID, lot.ID)
	require.NoError(t, err)

	require.NoError(t, admin.DeleteUser(user.ID))

	var spot models.ParkingSpot
	require.NoError(t, db.First(&spot, reservation.SpotID).Error)
	assert.Equal(t, models.SpotStatusAvailable, spot.Status)

	var users, reservations int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Reservation{}).Count(&reservations).Error)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 0, reservations)
}

func TestDeleteUserRefusesAdmins(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	admin := createUser(t, db, "root", true)

	assert.ErrorIs(t, svc.DeleteUser(admin.ID), ErrAdminProtected)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
