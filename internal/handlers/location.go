package handlers

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
	"github.com/ridebid/ridebid-backend/internal/services"
)

// PostDriverLocation records the driver's latest position for a ride
func PostDriverLocation(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID := c.Param("rideId")

		var input struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := core.UpdateLocation(rideID, *input.Lat, *input.Lng); err != nil {
			respondDispatchError(c, err)
			return
		}

		// Mirror in Redis for out-of-process consumers, best effort.
		if err := services.SetRideLocation(context.Background(), rideID, *input.Lat, *input.Lng); err != nil {
			log.Printf("Failed to mirror location for ride %s: %v", rideID, err)
		}

		c.JSON(200, gin.H{
			"message": "Location updated",
			"location": gin.H{
				"lat": *input.Lat,
				"lng": *input.Lng,
			},
		})
	}
}

// ReadDriverLocation returns the last reported driver position, or nulls
// when the driver has not reported yet
func ReadDriverLocation(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		loc, err := core.Location(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		if loc == nil {
			c.JSON(200, gin.H{"lat": nil, "lng": nil})
			return
		}

		c.JSON(200, gin.H{
			"lat":       loc.Lat,
			"lng":       loc.Lng,
			"updatedAt": loc.UpdatedAt,
		})
	}
}
