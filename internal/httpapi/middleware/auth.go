package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/common"
)

// UserIDKey holds the authenticated user id (uint64) in the gin context.
const UserIDKey = "user_id"

// Authenticator resolves an access token to a user id; auth.Service implements it.
type Authenticator interface {
	Authenticate(accessToken string) (uint64, error)
}

func AuthRequired(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			common.FailErr(c, common.ErrUnauthorized)
			return
		}
		uid, err := authn.Authenticate(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			common.FailErr(c, err)
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
