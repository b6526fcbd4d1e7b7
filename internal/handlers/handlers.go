package handlers

import (
	"errors"
	"log"
	"net/http"

	"eldercare/internal/apperr"
	"eldercare/internal/realtime"
	"eldercare/internal/repository"
	"eldercare/internal/services"

	"github.com/gin-gonic/gin"
)

// API bundles the services the HTTP layer exposes.
type API struct {
	Engine     *services.ReminderEngine
	Dispatcher *services.AlertDispatcher
	Hub        *realtime.Hub
	Users      *repository.UserRepository
	Caregivers *repository.CaregiverRepository
	Images     *services.ImageService // nil when Cloudinary is not configured
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	log.Printf("Error: %v", err)

	var (
		validation  *apperr.ValidationError
		forbidden   *apperr.ForbiddenError
		notFound    *apperr.NotFoundError
		gateway     *apperr.GatewayError
		persistence *apperr.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Msg})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &gateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.Error()})
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server OK"})
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
