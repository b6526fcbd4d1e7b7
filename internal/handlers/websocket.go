package handlers

import (
	"log"
	"net/http"

	"eldercare/internal/auth"
	"eldercare/internal/realtime"

	"github.com/gin-gonic/gin"
)

// ServeWS upgrades an authenticated connection and joins it to its personal
// room. Browsers cannot set headers on websocket upgrades, so the token
// rides in the query string.
func (a *API) ServeWS(c *gin.Context) {
	claims, err := auth.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	room := realtime.RoomKey{UserID: claims.UserID, Role: claims.Role}
	if err := realtime.ServeWS(a.Hub, c.Writer, c.Request, claims.UserID, claims.Role, room); err != nil {
		log.Printf("Error: websocket upgrade for user %s: %v", claims.UserID, err)
	}
}
