package handlers

import (
	"net/http"

	"eldercare/internal/auth"
	"eldercare/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateReminder schedules a reminder on behalf of the authenticated
// caregiver.
func (a *API) CreateReminder(c *gin.Context) {
	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	reminder, err := a.Engine.Schedule(c.GetString(auth.ContextUserID), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ListRemindersForCaregiver returns every reminder the caller created.
func (a *API) ListRemindersForCaregiver(c *gin.Context) {
	reminders, err := a.Engine.ListForCaregiver(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// ListRemindersForElderly returns the caller's active reminders.
func (a *API) ListRemindersForElderly(c *gin.Context) {
	reminders, err := a.Engine.ListForElderly(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// AcknowledgeReminder applies a "taken" or "snooze" action.
func (a *API) AcknowledgeReminder(c *gin.Context) {
	var req models.AcknowledgeReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	reminder, err := a.Engine.Acknowledge(c.Param("id"), c.GetString(auth.ContextUserID), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "acknowledged", "reminder": reminder})
}

// TriggerReminder re-emits a reminder to its owner's room, for manual
// testing of the push path.
func (a *API) TriggerReminder(c *gin.Context) {
	reminder, err := a.Engine.Trigger(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "triggered", "reminder": reminder})
}
