package routes

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
)

// RegisterAPIRoutes registers the read-only JSON API
func RegisterAPIRoutes(router *gin.RouterGroup) {
	router.GET("/lots", apiListLots)
	router.GET("/lots/:id", apiGetLot)
	router.GET("/lots/:id/spots", apiListLotSpots)
	router.GET("/history", apiHistory)
	router.GET("/stats", apiStats)
	router.GET("/charts/reservations", apiReservationChart)
}

// formatLot shapes a lot with its availability counts
func formatLot(lot models.ParkingLot, available, occupied int64) gin.H {
	return gin.H{
		"id":              lot.ID,
		"name":            lot.Name,
		"address":         lot.Address,
		"pincode":         lot.Pincode,
		"price_per_hour":  lot.PricePerHour,
		"max_spots":       lot.MaxSpots,
		"available_spots": available,
		"occupied_spots":  occupied,
	}
}

// formatReservation shapes a reservation; duration and cost are present only
// once it has been released
func formatReservation(r models.Reservation) gin.H {
	view := gin.H{
		"id":        r.ID,
		"lot_id":    r.Spot.LotID,
		"lot_name":  r.Spot.Lot.Name,
		"spot_id":   r.SpotID,
		"parked_at": r.ParkedAt,
		"left_at":   r.LeftAt,
	}
	if r.LeftAt != nil {
		hours := r.LeftAt.Sub(r.ParkedAt).Seconds() / 3600
		if hours < 0 {
			hours = 0
		}
		view["duration_hours"] = math.Round(hours*100) / 100
		view["cost"] = math.Round(hours*r.Spot.Lot.PricePerHour*100) / 100
	}
	return view
}

// apiListLots returns all lots with availability
func apiListLots(c *gin.Context) {
	var lots []models.ParkingLot
	if err := database.DB.Order("id").Find(&lots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lots"})
		return
	}

	svc := statsService()
	views := make([]gin.H, 0, len(lots))
	for _, lot := range lots {
		available, occupied, err := svc.LotOccupancy(lot.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lots"})
			return
		}
		views = append(views, formatLot(lot, available, occupied))
	}

	c.JSON(http.StatusOK, views)
}

// apiGetLot returns one lot with availability
func apiGetLot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parking lot not found"})
		return
	}

	available, occupied, err := statsService().LotOccupancy(lot.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lot"})
		return
	}

	c.JSON(http.StatusOK, formatLot(lot, available, occupied))
}

// apiListLotSpots returns a lot and the status of each of its spots
func apiListLotSpots(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	var lot models.ParkingLot
	if err := database.DB.Preload("Spots").First(&lot, lotID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parking lot not found"})
		return
	}

	available, occupied, err := statsService().LotOccupancy(lot.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lot"})
		return
	}

	spots := make([]gin.H, 0, len(lot.Spots))
	for _, spot := range lot.Spots {
		spots = append(spots, gin.H{
			"id":           spot.ID,
			"status":       spot.Status,
			"is_available": spot.IsAvailable(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"lot":   formatLot(lot, available, occupied),
		"spots": spots,
	})
}

// apiHistory returns the caller's parking history
func apiHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	history, err := bookingService().History(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	views := make([]gin.H, 0, len(history))
	for _, r := range history {
		views = append(views, formatReservation(r))
	}

	c.JSON(http.StatusOK, views)
}

// apiStats returns the aggregate statistics
func apiStats(c *gin.Context) {
	summary, err := statsService().Overview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// apiReservationChart returns per-lot reservation counts, optionally filtered
// by user id
func apiReservationChart(c *gin.Context) {
	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		id := uint(parsed)
		userID = &id
	}

	counts, err := statsService().ReservationCounts(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chart data"})
		return
	}

	labels := make([]string, 0, len(counts))
	values := make([]int64, 0, len(counts))
	for _, row := range counts {
		labels = append(labels, row.Label)
		values = append(values, row.Count)
	}

	c.JSON(http.StatusOK, gin.H{
		"labels": labels,
		"counts": values,
	})
}
