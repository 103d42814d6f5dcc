package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
)

// DriverArrived marks that the driver has reached the pickup location
func DriverArrived(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := core.MarkDriverArrived(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Driver arrival confirmed",
			"rideId":  ride.ID,
			"status":  ride.Status,
		})
	}
}

// StartRide verifies the pickup code and starts the trip
func StartRide(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			OTP string `json:"otp" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := core.StartRide(c.Param("rideId"), input.OTP)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Ride started",
			"rideId":  ride.ID,
			"status":  ride.Status,
		})
	}
}

// CompleteRide finishes the trip
func CompleteRide(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := core.CompleteRide(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "Ride completed",
			"rideId":  ride.ID,
			"status":  ride.Status,
		})
	}
}

// ReissueOTP mints a replacement pickup code after expiry or lockout
func ReissueOTP(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		otp, err := core.ReissueOTP(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": "OTP reissued",
			"otp":     otp,
		})
	}
}
