package services

import (
	"math"

	"gorm.io/gorm"

	"vehicle-parking-server/models"
)

// StatsService produces the read-only numbers behind the dashboards and the
// statistics API.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// LotCount pairs a lot label with its reservation count for charting.
type LotCount struct {
	LotID uint   `json:"lot_id"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DashboardCounts are the admin dashboard cards.
type DashboardCounts struct {
	TotalLots      int64 `json:"total_lots"`
	TotalSpots     int64 `json:"total_spots"`
	OccupiedSpots  int64 `json:"occupied_spots"`
	AvailableSpots int64 `json:"available_spots"`
}

// Summary is the aggregate view served by the statistics API.
type Summary struct {
	TotalParkingLots int64       `json:"total_parking_lots"`
	TotalSpots       int64       `json:"total_spots"`
	TotalBookings    int64       `json:"total_bookings"`
	ActiveBookings   int64       `json:"active_bookings"`
	Revenue          float64     `json:"revenue"`
	UsageByHour      map[int]int `json:"usage_by_hour"`
	TopLots          []LotCount  `json:"top_lots"`
}

// ReservationCounts returns one row per lot: the lot name and how many
// reservations its spots have seen, optionally restricted to one user.
func (s *StatsService) ReservationCounts(userID *uint) ([]LotCount, error) {
	var lots []models.ParkingLot
	if err := s.db.Order("id").Find(&lots).Error; err != nil {
		return nil, err
	}

	counts := make([]LotCount, 0, len(lots))
	for _, lot := range lots {
		query := s.db.Model(&models.Reservation{}).
			Joins("JOIN parking_spots ON parking_spots.id = reservations.spot_id").
			Where("parking_spots.lot_id = ?", lot.ID)
		if userID != nil {
			query = query.Where("reservations.user_id = ?", *userID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return nil, err
		}
		counts = append(counts, LotCount{LotID: lot.ID, Label: lot.Name, Count: count})
	}
	return counts, nil
}

// Dashboard returns the spot occupancy totals for the admin dashboard.
func (s *StatsService) Dashboard() (*DashboardCounts, error) {
	var counts DashboardCounts
	if err := s.db.Model(&models.ParkingLot{}).Count(&counts.TotalLots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ParkingSpot{}).Count(&counts.TotalSpots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ParkingSpot{}).
		Where("status = ?", models.SpotStatusOccupied).
		Count(&counts.OccupiedSpots).Error; err != nil {
		return nil, err
	}
	counts.AvailableSpots = counts.TotalSpots - counts.OccupiedSpots
	return &counts, nil
}

// LotOccupancy returns available/occupied spot counts for one lot.
func (s *StatsService) LotOccupancy(lotID uint) (available, occupied int64, err error) {
	if err = s.db.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotStatusAvailable).
		Count(&available).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotStatusOccupied).
		Count(&occupied).Error; err != nil {
		return 0, 0, err
	}
	return available, occupied, nil
}

// Overview aggregates bookings, revenue and usage across all lots. Revenue
// only counts closed reservations; fees use the same rounding as release.
func (s *StatsService) Overview() (*Summary, error) {
	summary := Summary{UsageByHour: make(map[int]int)}

	if err := s.db.Model(&models.ParkingLot{}).Count(&summary.TotalParkingLots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ParkingSpot{}).Count(&summary.TotalSpots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Reservation{}).Count(&summary.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Reservation{}).
		Where("left_at IS NULL").
		Count(&summary.ActiveBookings).Error; err != nil {
		return nil, err
	}

	var closed []models.Reservation
	if err := s.db.Preload("Spot").Preload("Spot.Lot").
		Where("left_at IS NOT NULL").
		Find(&closed).Error; err != nil {
		return nil, err
	}

	var revenue float64
	for _, r := range closed {
		_, cost := computeFee(r.ParkedAt, *r.LeftAt, r.Spot.Lot.PricePerHour)
		revenue += cost
		summary.UsageByHour[r.ParkedAt.Hour()]++
	}
	summary.Revenue = math.Round(revenue*100) / 100

	top, err := s.ReservationCounts(nil)
	if err != nil {
		return nil, err
	}
	summary.TopLots = top

	return &summary, nil
}
