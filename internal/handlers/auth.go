package handlers

import (
	"net/http"
	"strings"

	"eldercare/internal/auth"
	"eldercare/internal/models"

	"github.com/gin-gonic/gin"
)

// Register creates an account. Caregivers register with a password, elderly
// users with a short PIN.
func (a *API) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleElderly
	}
	if role != models.RoleElderly && role != models.RoleCaregiver {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be elderly or caregiver"})
		return
	}

	user := models.User{
		Name:  req.Name,
		Email: strings.ToLower(req.Email),
		Role:  role,
		Phone: req.Phone,
	}

	switch role {
	case models.RoleCaregiver:
		if len(req.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "caregiver password must be at least 8 characters"})
			return
		}
		hash, err := auth.HashSecret(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		user.HashedPass = hash

	default:
		if len(req.Pin) < 4 || len(req.Pin) > 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "elderly PIN must be 4 to 8 digits"})
			return
		}
		hash, err := auth.HashSecret(req.Pin)
		if err != nil {
			respondError(c, err)
			return
		}
		user.PinHash = hash
	}

	if err := a.Users.Create(&user); err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login authenticates by email plus password (caregiver) or PIN (elderly)
// and issues a JWT.
func (a *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	user, err := a.Users.FindByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ok := false
	switch user.Role {
	case models.RoleCaregiver:
		ok = req.Password != "" && auth.CheckSecret(user.HashedPass, req.Password)
	default:
		ok = req.Pin != "" && auth.CheckSecret(user.PinHash, req.Pin)
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
