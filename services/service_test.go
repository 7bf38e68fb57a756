package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vehicle-parking-server/models"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive for the
	// duration of the test
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
		&models.Waitlist{},
		&models.Notification{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		IsAdmin:      isAdmin,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createLot(t *testing.T, db *gorm.DB, name string, pricePerHour float64, spots int) models.ParkingLot {
	t.Helper()
	lot := models.ParkingLot{
		Name:         name,
		PricePerHour: pricePerHour,
		Address:      "1 Test Street",
		Pincode:      "560001",
		MaxSpots:     spots,
	}
	require.NoError(t, db.Create(&lot).Error)
	for i := 0; i < spots; i++ {
		require.NoError(t, db.Create(&models.ParkingSpot{LotID: lot.ID}).Error)
	}
	return lot
}

// backdateReservation shifts parked_at into the past to simulate elapsed time.
func backdateReservation(t *testing.T, db *gorm.DB, reservationID uint, by time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Update("parked_at", time.Now().UTC().Add(-by)).Error)
}
