package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/response"
)

const userKey = "user"

func AuthMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			user, err := provider.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set(userKey, user)
				c.Next()
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusBadGateway, response.NewAppError(http.StatusBadGateway, "auth unavailable"))
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, "unauthorized"))
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.NewAppError(http.StatusForbidden, "admin role required"))
			return
		}
		c.Next()
	}
}

// CurrentUser is the user AuthMiddleware stored, or nil.
func CurrentUser(c *gin.Context) *internal.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*internal.User)
	return u
}
