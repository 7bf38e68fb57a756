package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"vehicle-parking-server/models"
)

// OccupancyAuditJob periodically checks that every lot's occupied spot count
// matches its open reservation count. It only reports; it never repairs.
type OccupancyAuditJob struct {
	db       *gorm.DB
	interval time.Duration
	stopChan chan bool
}

// Drift describes one lot whose occupancy disagrees with its reservations.
type Drift struct {
	LotID            uint
	OccupiedSpots    int64
	OpenReservations int64
}

// NewOccupancyAuditJob creates a new audit job
func NewOccupancyAuditJob(db *gorm.DB, interval time.Duration) *OccupancyAuditJob {
	return &OccupancyAuditJob{
		db:       db,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the audit job
func (j *OccupancyAuditJob) Start() {
	go j.run()
	log.Println("Occupancy audit job started")
}

// Stop stops the audit job
func (j *OccupancyAuditJob) Stop() {
	j.stopChan <- true
	log.Println("Occupancy audit job stopped")
}

func (j *OccupancyAuditJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			drifts, err := j.Audit()
			if err != nil {
				log.Printf("Occupancy audit failed: %v", err)
				continue
			}
			for _, d := range drifts {
				log.Printf("Occupancy drift in lot %d: %d occupied spots vs %d open reservations",
					d.LotID, d.OccupiedSpots, d.OpenReservations)
			}
		case <-j.stopChan:
			return
		}
	}
}

// Audit compares occupied spots against open reservations per lot and returns
// every mismatch.
func (j *OccupancyAuditJob) Audit() ([]Drift, error) {
	var lotIDs []uint
	if err := j.db.Model(&models.ParkingLot{}).Pluck("id", &lotIDs).Error; err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, lotID := range lotIDs {
		var occupied int64
		if err := j.db.Model(&models.ParkingSpot{}).
			Where("lot_id = ? AND status = ?", lotID, models.SpotStatusOccupied).
			Count(&occupied).Error; err != nil {
			return nil, err
		}

		var open int64
		if err := j.db.Model(&models.Reservation{}).
			Joins("JOIN parking_spots ON parking_spots.id = reservations.spot_id").
			Where("parking_spots.lot_id = ? AND reservations.left_at IS NULL", lotID).
			Count(&open).Error; err != nil {
			return nil, err
		}

		if occupied != open {
			drifts = append(drifts, Drift{LotID: lotID, OccupiedSpots: occupied, OpenReservations: open})
		}
	}
	return drifts, nil
}
