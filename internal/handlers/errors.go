package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ridebid/ridebid-backend/internal/dispatch"
)

// respondDispatchError maps the dispatch error taxonomy onto the HTTP
// surface: unknown rides are 404, every caller-correctable rejection is 400.
func respondDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatch.ErrRideNotFound):
		c.JSON(404, gin.H{"error": "Ride not found"})
	case errors.Is(err, dispatch.ErrBidNotFound),
		errors.Is(err, dispatch.ErrRideNotOpen),
		errors.Is(err, dispatch.ErrInvalidTransition),
		errors.Is(err, dispatch.ErrOtpMismatch),
		errors.Is(err, dispatch.ErrOtpExpired),
		errors.Is(err, dispatch.ErrChatClosed),
		errors.Is(err, dispatch.ErrInvalidInput):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Internal error"})
	}
}
