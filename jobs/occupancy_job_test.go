package jobs

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vehicle-parking-server/models"
)

var testDBCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:jobtest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	))

	return db
}

func seedLot(t *testing.T, db *gorm.DB, spots int) models.ParkingLot {
	t.Helper()
	lot := models.ParkingLot{
		Name:         "Audit Lot",
		Address:      "1 Test Street",
		Pincode:      "560001",
		PricePerHour: 10.0,
		MaxSpots:     spots,
	}
	require.NoError(t, db.Create(&lot).Error)
	for i := 0; i < spots; i++ {
		require.NoError(t, db.Create(&models.ParkingSpot{LotID: lot.ID}).Error)
	}
	return lot
}

func TestAuditCleanDatabase(t *testing.T) {
	db := newTestDB(t)
	seedLot(t, db, 3)

	job := NewOccupancyAuditJob(db, time.Minute)
	drifts, err := job.Audit()
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAuditConsistentOccupancy(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 2)
	user := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	var spot models.ParkingSpot
	require.NoError(t, db.Where("lot_id = ?", lot.ID).First(&spot).Error)
	require.NoError(t, db.Model(&spot).Update("status", models.SpotStatusOccupied).Error)
	require.NoError(t, db.Create(&models.Reservation{
		SpotID:   spot.ID,
		UserID:   user.ID,
		ParkedAt: time.Now().UTC(),
	}).Error)

	job := NewOccupancyAuditJob(db, time.Minute)
	drifts, err := job.Audit()
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAuditDetectsDrift(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 2)

	// An occupied spot without an open reservation is drift
	var spot models.ParkingSpot
	require.NoError(t, db.Where("lot_id = ?", lot.ID).First(&spot).Error)
	require.NoError(t, db.Model(&spot).Update("status", models.SpotStatusOccupied).Error)

	job := NewOccupancyAuditJob(db, time.Minute)
	drifts, err := job.Audit()
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, lot.ID, drifts[0].LotID)
	assert.EqualValues(t, 1, drifts[0].OccupiedSpots)
	assert.EqualValues(t, 0, drifts[0].OpenReservations)
}

func TestStartStop(t *testing.T) {
	db := newTestDB(t)
	job := NewOccupancyAuditJob(db, time.Hour)

	job.Start()
	job.Stop()
}
