package handlers

import (
	"net/http"
	"strings"

	"eldercare/internal/auth"
	"eldercare/internal/models"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser returns the authenticated profile.
func (a *API) GetCurrentUser(c *gin.Context) {
	user, err := a.Users.FindByID(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateContactsRequest struct {
	Contacts []models.EmergencyContact `json:"contacts" binding:"required"`
}

// UpdateEmergencyContacts replaces the caller's declared family contacts.
func (a *API) UpdateEmergencyContacts(c *gin.Context) {
	var req updateContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	for i, contact := range req.Contacts {
		phone, err := models.NormalizePhone(contact.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Contacts[i].Phone = phone
	}

	user, err := a.Users.FindByID(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	user.EmergencyContacts = req.Contacts
	if err := a.Users.Save(user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type linkCaregiverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LinkCaregiver associates an existing caregiver account with the caller so
// it resolves as an alert recipient and observes the caller's alerts.
func (a *API) LinkCaregiver(c *gin.Context) {
	var req linkCaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	caregiver, err := a.Users.FindByEmail(req.Email)
	if err != nil || caregiver.Role != models.RoleCaregiver {
		c.JSON(http.StatusNotFound, gin.H{"error": "no caregiver account with that email"})
		return
	}

	user, err := a.Users.FindByID(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, id := range user.CaregiverIDs {
		if id == caregiver.ID {
			c.JSON(http.StatusOK, user)
			return
		}
	}
	user.CaregiverIDs = append(user.CaregiverIDs, caregiver.ID)
	if err := a.Users.Save(user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAssistant customizes the assistant name and avatar. The avatar is a
// multipart file stored on Cloudinary.
func (a *API) UpdateAssistant(c *gin.Context) {
	user, err := a.Users.FindByID(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	if name := strings.TrimSpace(c.PostForm("assistant_name")); name != "" {
		user.AssistantName = name
	}

	if file, header, err := c.Request.FormFile("avatar"); err == nil {
		defer file.Close()
		if a.Images == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
			return
		}
		url, err := a.Images.UploadAvatar(file, header.Filename, user.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user.AssistantImage = url
	}

	if err := a.Users.Save(user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
