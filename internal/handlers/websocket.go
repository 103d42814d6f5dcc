package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/services"
)

// WebSocketHandler subscribes the caller to live events for one ride
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID := c.Query("rideId")
		if rideID == "" {
			c.JSON(400, gin.H{"error": "rideId query parameter required"})
			return
		}
		role := c.DefaultQuery("role", "user")

		services.HandleWebSocket(hub, c.Writer, c.Request, rideID, role)
	}
}
