package routes

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
	"vehicle-parking-server/services"
)

// RegisterUserRoutes registers the end-user booking routes
func RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", userDashboard)
	router.GET("/history", userHistory)
	router.GET("/book/:lotId", bookParking)
	router.GET("/release/:reservationId", releaseParking)
	router.GET("/waitlist/:lotId", joinWaitlist)
}

// userDashboard returns lots with availability, the active reservation and
// the booking history
func userDashboard(c *gin.Context) {
	user, ok := requireEndUser(c)
	if !ok {
		return
	}

	var lots []models.ParkingLot
	if err := database.DB.Order("id").Find(&lots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lots"})
		return
	}

	svc := statsService()
	lotViews := make([]gin.H, 0, len(lots))
	for _, lot := range lots {
		available, occupied, err := svc.LotOccupancy(lot.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking lots"})
			return
		}
		lotViews = append(lotViews, gin.H{
			"lot":             lot,
			"available_spots": available,
			"occupied_spots":  occupied,
		})
	}

	booking := bookingService()
	var active *models.Reservation
	if reservation, err := booking.ActiveReservation(user.ID); err == nil {
		active = reservation
	} else if err != services.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		return
	}

	history, err := booking.History(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lots":               lotViews,
		"active_reservation": active,
		"history":            history,
	})
}

// userHistory returns the user's reservations, newest first
func userHistory(c *gin.Context) {
	user, ok := requireEndUser(c)
	if !ok {
		return
	}

	history, err := bookingService().History(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// bookParking books a spot in the requested lot
func bookParking(c *gin.Context) {
	user, ok := requireEndUser(c)
	if !ok {
		return
	}

	lotID, err := strconv.Atoi(c.Param("lotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	reservation, err := bookingService().Book(user.ID, uint(lotID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	publishLotOccupancy(uint(lotID))

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Parking booked successfully!",
		"reservation": reservation,
	})
}

// releaseParking releases a reservation and reports the fee
func releaseParking(c *gin.Context) {
	user, ok := requireEndUser(c)
	if !ok {
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	receipt, err := bookingService().Release(user.ID, uint(reservationID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	publishLotOccupancy(receipt.Reservation.Spot.LotID)

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Parking spot released successfully! Total cost: %.2f", receipt.Cost),
		"receipt": receipt,
	})
}

// joinWaitlist adds the user to a lot's waitlist
func joinWaitlist(c *gin.Context) {
	user, ok := requireEndUser(c)
	if !ok {
		return
	}

	lotID, err := strconv.Atoi(c.Param("lotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lot ID"})
		return
	}

	entry, err := bookingService().JoinWaitlist(user.ID, uint(lotID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "You have been added to the waitlist. We will notify you when a spot opens up.",
		"entry":   entry,
	})
}
