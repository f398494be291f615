package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/response"
)

// UserKey is the gin context key holding the authenticated *internal.User.
const UserKey = "user"

// AuthMiddleware requires a bearer token and stores its user under UserKey.
// onFailure, when set, is told why a request was turned away.
func AuthMiddleware(provider Provider, onFailure func(reason string)) gin.HandlerFunc {
	fail := func(c *gin.Context, status int, reason, msg string) {
		if onFailure != nil {
			onFailure(reason)
		}
		c.AbortWithStatusJSON(status, response.NewAppError(status, msg))
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "missing_token", "Unauthorized")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			fail(c, http.StatusUnauthorized, "missing_token", "Unauthorized")
			return
		}

		user, err := provider.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(UserKey, user)
			c.Next()
		case errors.Is(err, ErrUnavailable):
			fail(c, http.StatusServiceUnavailable, "unavailable", "Authentication temporarily unavailable")
		default:
			fail(c, http.StatusUnauthorized, "invalid_token", "Unauthorized")
		}
	}
}

// CurrentUser returns the user AuthMiddleware stored, or nil.
func CurrentUser(c *gin.Context) *internal.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*internal.User)
	return user
}
