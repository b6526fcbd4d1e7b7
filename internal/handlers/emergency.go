package handlers

import (
	"log"
	"net/http"

	"eldercare/internal/auth"
	"eldercare/internal/models"
	"eldercare/internal/utils"

	"github.com/gin-gonic/gin"
)

// RaiseAlert creates an emergency alert for the authenticated user and fans
// it out to every resolved recipient. The response carries the per-recipient
// delivery report.
func (a *API) RaiseAlert(c *gin.Context) {
	var req models.RaiseAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	userID := c.GetString(auth.ContextUserID)
	log.Printf("alert raised by %s from %s (sent_via=%s)", userID, utils.GetRealClientIP(c), req.SentVia)

	alert, report, err := a.Dispatcher.Raise(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "alert created", "alert": alert, "sent": report})
}

// ListAlerts is role-scoped: elderly users see their own alerts, caregivers
// see alerts of elderly users they are assigned to.
func (a *API) ListAlerts(c *gin.Context) {
	alerts, err := a.Dispatcher.List(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// AcknowledgeAlert moves an alert to acknowledged.
func (a *API) AcknowledgeAlert(c *gin.Context) {
	alert, err := a.Dispatcher.Acknowledge(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "acknowledged", "alert": alert})
}

// ResolveAlert closes an alert.
func (a *API) ResolveAlert(c *gin.Context) {
	alert, err := a.Dispatcher.Resolve(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resolved", "alert": alert})
}
