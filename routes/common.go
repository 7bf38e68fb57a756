package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
	"vehicle-parking-server/services"
	ws "vehicle-parking-server/websocket"
)

// occupancyHub receives lot occupancy updates after bookings and releases.
// Nil when the feed is disabled (tests).
var occupancyHub *ws.Hub

// UseOccupancyHub wires the websocket occupancy feed into the handlers
func UseOccupancyHub(hub *ws.Hub) {
	occupancyHub = hub
}

func bookingService() *services.BookingService {
	return services.NewBookingService(database.DB)
}

func adminService() *services.AdminService {
	return services.NewAdminService(database.DB)
}

func statsService() *services.StatsService {
	return services.NewStatsService(database.DB)
}

// currentUser pulls the authenticated user placed in the context by
// AuthMiddleware.
func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

// requireEndUser rejects admins on end-user routes, mirroring the role split
// of the dashboards.
func requireEndUser(c *gin.Context) (models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return models.User{}, false
	}
	if user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "End-user access only"})
		return models.User{}, false
	}
	return user, true
}

// respondServiceError maps domain errors onto HTTP responses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrAlreadyReserved):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Active reservation exists",
			"message": "You already have an active reservation.",
		})
	case errors.Is(err, services.ErrNoCapacity):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "No capacity",
			"message": "No available spots in this lot. You can join the waitlist.",
		})
	case errors.Is(err, services.ErrAlreadyWaitlisted):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Already waitlisted",
			"message": "You are already on the waitlist for this lot.",
		})
	case errors.Is(err, services.ErrAdminProtected):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Admin protected",
			"message": "Admin accounts cannot be deleted.",
		})
	case errors.Is(err, services.ErrSpotsOccupied):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Spots occupied",
			"message": "Occupied spots cannot be removed. Wait for them to be released.",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

// publishLotOccupancy pushes the lot's fresh availability counts to the
// occupancy feed. Best effort: feed failures never affect the request.
func publishLotOccupancy(lotID uint) {
	if occupancyHub == nil {
		return
	}
	available, occupied, err := statsService().LotOccupancy(lotID)
	if err != nil {
		return
	}
	occupancyHub.PublishOccupancy(lotID, available, occupied)
}
