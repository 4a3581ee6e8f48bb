package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "gentherapist_session"
	sessionContextKey = "session_id"
	sessionMaxAge     = 7 * 24 * 60 * 60
)

// Session assigns every client a UUID session id kept in a cookie. Missing
// or malformed cookies are replaced with a fresh id.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if err == nil {
			_, err = uuid.Parse(sid)
		}
		if err != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, sid, sessionMaxAge, "/", "", secure, true)
		}

		c.Set(sessionContextKey, sid)
		c.Next()
	}
}

// SessionID returns the id assigned by Session, or "" outside it
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
