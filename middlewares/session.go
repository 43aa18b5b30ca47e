// file: middlewares/session.go
package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "hs_session"
	CtxSessionID  = "session_id"
	sessionMaxAge = 365 * 24 * 60 * 60
)

// Session issues an anonymous visitor cookie used to count blog views once.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err == nil {
			_, err = uuid.Parse(sid)
		}
		if err != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, sessionMaxAge, "/", "", secure, true)
		}
		c.Set(CtxSessionID, sid)
		c.Next()
	}
}

// SessionID returns the visitor id set by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(CtxSessionID)
}
