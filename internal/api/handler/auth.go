package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateOfficerJWT issues a token carrying the officer's ID.
func (h *Handler) generateOfficerJWT(officerID string) (string, error) {
	claims := jwt.MapClaims{
		"officer_id": officerID,
		"exp":        time.Now().Add(time.Hour * 12).Unix(),
		"iss":        "jalrakshak-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateOfficerToken parses a bearer token and returns the officer ID.
func (h *Handler) validateOfficerToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	officerID, ok := claims["officer_id"].(string)
	if !ok || officerID == "" {
		return "", errors.New("officer_id missing from token")
	}
	return officerID, nil
}

// OfficerLogin exchanges the shared access code for an officer JWT.
// Identity management proper lives outside this service; the token only
// carries the officer_id recorded on responses.
func (h *Handler) OfficerLogin(c *gin.Context) {
	var req struct {
		OfficerID  string `json:"officer_id"`
		AccessCode string `json:"access_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OfficerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "officer_id and access_code required"})
		return
	}
	if req.AccessCode != h.OfficerAccessCode {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access code"})
		return
	}

	token, err := h.generateOfficerJWT(req.OfficerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "officer_id": req.OfficerID})
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", false
	}
	return authHeader[7:], true
}

// RequireOfficer is the middleware guarding officer-only routes. It stores
// the validated officer_id in the gin context.
func (h *Handler) RequireOfficer(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	officerID, err := h.validateOfficerToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	c.Set("officer_id", officerID)
	c.Next()
}
