package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const RefreshCookieName = "refreshToken"

// CookieConfig controls the refresh token cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
}

func SetRefreshCookie(c *gin.Context, cfg CookieConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, token, int(RefreshTokenTTL.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

func ClearRefreshCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// RefreshCookie returns the refresh token cookie, or "" if the request has none.
func RefreshCookie(c *gin.Context) string {
	v, err := c.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return v
}
