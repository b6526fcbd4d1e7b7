package handlers

import (
	"net/http"
	"strings"

	"eldercare/internal/auth"
	"eldercare/internal/models"

	"github.com/gin-gonic/gin"
)

// AddCaregiver registers a caregiver contact on the caller's roster.
func (a *API) AddCaregiver(c *gin.Context) {
	var req models.CaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	elderlyID := c.GetString(auth.ContextUserID)

	phone, err := models.NormalizePhone(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(req.Email)

	existing, err := a.Caregivers.FindDuplicate(elderlyID, email, phone)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":              "a caregiver with this email or phone is already registered",
			"existing_caregiver": existing,
		})
		return
	}

	if req.IsPrimary {
		if err := a.Caregivers.ClearPrimary(elderlyID); err != nil {
			respondError(c, err)
			return
		}
	}

	cg := models.Caregiver{
		ElderlyID:    elderlyID,
		Name:         req.Name,
		Email:        email,
		Phone:        phone,
		ReceiveSMS:   true,
		ReceiveEmail: true,
		IsPrimary:    req.IsPrimary,
	}
	if req.ReceiveSMS != nil {
		cg.ReceiveSMS = *req.ReceiveSMS
	}
	if req.ReceiveEmail != nil {
		cg.ReceiveEmail = *req.ReceiveEmail
	}

	if err := a.Caregivers.Create(&cg); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "caregiver added", "caregiver": cg})
}

// ListCaregivers returns the caller's roster, primary first.
func (a *API) ListCaregivers(c *gin.Context) {
	caregivers, err := a.Caregivers.ListByElderly(c.GetString(auth.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caregivers)
}

// UpdateCaregiver edits a roster entry owned by the caller.
func (a *API) UpdateCaregiver(c *gin.Context) {
	var req models.CaregiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	elderlyID := c.GetString(auth.ContextUserID)

	cg, err := a.Caregivers.FindByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if cg.ElderlyID != elderlyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your caregiver record"})
		return
	}

	phone, err := models.NormalizePhone(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.IsPrimary && !cg.IsPrimary {
		if err := a.Caregivers.ClearPrimary(elderlyID); err != nil {
			respondError(c, err)
			return
		}
	}

	cg.Name = req.Name
	cg.Email = strings.ToLower(req.Email)
	cg.Phone = phone
	cg.IsPrimary = req.IsPrimary
	if req.ReceiveSMS != nil {
		cg.ReceiveSMS = *req.ReceiveSMS
	}
	if req.ReceiveEmail != nil {
		cg.ReceiveEmail = *req.ReceiveEmail
	}

	if err := a.Caregivers.Save(cg); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "caregiver updated", "caregiver": cg})
}

// DeleteCaregiver removes a roster entry owned by the caller.
func (a *API) DeleteCaregiver(c *gin.Context) {
	elderlyID := c.GetString(auth.ContextUserID)

	cg, err := a.Caregivers.FindByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if cg.ElderlyID != elderlyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your caregiver record"})
		return
	}

	if err := a.Caregivers.Delete(cg.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "caregiver removed"})
}
