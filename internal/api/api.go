// Package api exposes the service layer over HTTP with gin. Handlers bind
// and validate request bodies, call into services, and translate service
// errors to status codes; they hold no business logic of their own.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/invite"
	"github.com/splitr/splitr/internal/service"
)

// writeError maps service errors to HTTP responses. NotFound and
// Forbidden pass through as-is; invalid input and invalid invites are
// caller errors; anything else is a 500 with the detail kept out of the
// response.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, invite.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
