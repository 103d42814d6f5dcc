package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
)

// CreateRide handles ride creation by a rider
func CreateRide(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Pickup struct {
				Lat     *float64 `json:"lat" binding:"required"`
				Lng     *float64 `json:"lng" binding:"required"`
				Address string   `json:"address" binding:"required"`
			} `json:"pickup" binding:"required"`
			Destination struct {
				Lat     *float64 `json:"lat" binding:"required"`
				Lng     *float64 `json:"lng" binding:"required"`
				Address string   `json:"address" binding:"required"`
			} `json:"destination" binding:"required"`
			DistanceKm   float64 `json:"distanceKm"`
			TrafficDelay int     `json:"trafficDelay"`
			VehicleType  string  `json:"vehicleType" binding:"required"`
			UserPrice    float64 `json:"userPrice" binding:"required"`
			RiderPhone   string  `json:"riderPhone"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := core.CreateRide(dispatch.CreateRideInput{
			PickupLat:    *input.Pickup.Lat,
			PickupLng:    *input.Pickup.Lng,
			PickupAddr:   input.Pickup.Address,
			DestLat:      *input.Destination.Lat,
			DestLng:      *input.Destination.Lng,
			DestAddr:     input.Destination.Address,
			DistanceKm:   input.DistanceKm,
			TrafficDelay: input.TrafficDelay,
			VehicleType:  input.VehicleType,
			UserPrice:    input.UserPrice,
			RiderPhone:   input.RiderPhone,
		})
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"rideId": ride.ID,
			"status": ride.Status,
		})
	}
}

// GetRide returns the full ride including its bid ledger
func GetRide(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := core.GetRide(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, ride)
	}
}

// ListPendingRides lists every ride still open for bidding (admin surface)
func ListPendingRides(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"requests": core.ListPending(),
		})
	}
}
