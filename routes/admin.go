package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
	"vehicle-parking-server/services"
	ws "vehicle-parking-server/websocket"
)

// RegisterAdminRoutes registers the admin management routes. The group must
// already carry the auth + admin middleware.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/stats", adminDashboardStats)

	router.GET("/lots", adminListLots)
	router.POST("/lots", adminCreateLot)
	router.PUT("/lots/:lotId", adminUpdateLot)
	router.POST("/lots/delete/:lotId", adminDeleteLot)
	router.GET("/lots/:lotId/spots", adminListLotSpots)

	router.GET("/users", adminListUsers)
	router.POST("/users/delete/:userId", adminDeleteUser)
}

// RegisterOccupancyFeed registers the websocket occupancy feed endpoint
func RegisterOccupancyFeed(router *gin.RouterGroup, hub *ws.Hub) {
	router.GET("/ws/occupancy", func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		ws.ServeFeed(hub, c.Writer, c.Request, user.ID)
	})
}

// adminDashboardStats returns the dashboard cards
func adminDashboardStats(c *gin.Context) {
	counts, err := statsService().Dashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// adminListLots returns all lots with their availability
func adminListLots(c *gin.Context) {
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
		views = append(views, gin.H{
			"lot":             lot,
			"available_spots": available,
			"occupied_spots":  occupied,
		})
	}

	c.JSON(http.StatusOK, gin.H{"lots": views})
}

// adminCreateLot creates a lot and its spots
func adminCreateLot(c *gin.Context) {
	var input services.LotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	lot, err := adminService().CreateLot(input)
	if err != nil {
		log.Printf("Lot creation failed: %v", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Parking lot created successfully!",
		"lot":     lot,
	})
}

// adminUpdateLot updates lot fields and resizes the spot pool
func adminUpdateLot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("lotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	var input services.LotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	lot, err := adminService().UpdateLot(uint(lotID), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	publishLotOccupancy(lot.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Parking lot updated successfully!",
		"lot":     lot,
	})
}

// adminDeleteLot deletes a lot and everything under it
func adminDeleteLot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("lotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	if err := adminService().DeleteLot(uint(lotID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Parking lot deleted successfully"})
}

// adminListLotSpots returns the spots of one lot
func adminListLotSpots(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("lotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	var lot models.ParkingLot
	if err := database.DB.Preload("Spots").First(&lot, lotID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parking lot not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lot": lot})
}

// adminListUsers returns all user accounts
func adminListUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// adminDeleteUser deletes a non-admin user and their rows
func adminDeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := adminService().DeleteUser(uint(userID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
