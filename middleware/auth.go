// File: /middleware/auth.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what the upstream-issued bearer token says about the caller.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// ParseToken validates an HMAC-signed token and extracts the caller identity.
// Admin rights come from either a "role":"admin" or an "is_admin":true claim.
func ParseToken(tokenString, secret string) (*Identity, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	identity := &Identity{UserID: userID}
	if role, ok := claims["role"].(string); ok && role == "admin" {
		identity.IsAdmin = true
	}
	if admin, ok := claims["is_admin"].(bool); ok && admin {
		identity.IsAdmin = true
	}
	return identity, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller identity under ContextUserID and ContextIsAdmin.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Authorization header required",
				Code:  http.StatusUnauthorized,
			})
			return
		}

		identity, err := ParseToken(header, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Invalid or expired token",
				Code:  http.StatusUnauthorized,
			})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextIsAdmin, identity.IsAdmin)
		c.Next()
	}
}
