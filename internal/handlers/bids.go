package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
)

// SubmitBid handles a driver's bid or counter-bid against a pending ride
func SubmitBid(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID := c.Param("rideId")

		var input struct {
			DriverID    string  `json:"driverId" binding:"required"`
			DriverName  string  `json:"driverName"`
			Vehicle     string  `json:"vehicle"`
			Price       float64 `json:"price" binding:"required"`
			Rating      float64 `json:"rating"`
			DriverPhone string  `json:"driverPhone"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		bid, err := core.SubmitBid(rideID, dispatch.BidInput{
			DriverID:    input.DriverID,
			DriverName:  input.DriverName,
			Vehicle:     input.Vehicle,
			Price:       input.Price,
			Rating:      input.Rating,
			DriverPhone: input.DriverPhone,
		})
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Bid submitted",
			"bidId":   bid.ID,
		})
	}
}

// AcceptBid handles the rider selecting one bid. Exactly one concurrent
// acceptance wins; losers get a 400 and should re-fetch ride state.
func AcceptBid(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID := c.Param("rideId")

		var input struct {
			BidID string `json:"bidId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		bid, otp, err := core.AcceptBid(rideID, input.BidID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Bid accepted",
			"bid":     bid,
			"otp":     otp,
		})
	}
}

// DeclineRide handles the rider declining a pending ride outright
func DeclineRide(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := core.Decline(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Ride declined",
			"rideId":  ride.ID,
			"status":  ride.Status,
		})
	}
}
