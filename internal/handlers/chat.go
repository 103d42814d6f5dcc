package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
)

// PostChatMessage appends one chat line and returns the updated message list
func PostChatMessage(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			From string `json:"from" binding:"required"`
			Text string `json:"text" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		messages, err := core.PostMessage(c.Param("rideId"), input.From, input.Text)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{"messages": messages})
	}
}

// ListChatMessages returns all chat lines for a ride in insertion order
func ListChatMessages(core *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, err := core.Messages(c.Param("rideId"))
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(200, gin.H{"messages": messages})
	}
}
