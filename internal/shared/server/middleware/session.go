package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-assistant/internal/shared/server/respond"
	"resume-assistant/internal/shared/telemetry"
)

const (
	sessionIDKey = "sessionId"

	// SessionCookie is the cookie holding the signed session token.
	SessionCookie = "ra_session"
	// SessionHeader carries the token for clients that do not keep cookies.
	SessionHeader = "X-Session-Token"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, error)
	Verify(token string) (string, error)
}

// SessionOptions controls how the session cookie is written.
type SessionOptions struct {
	MaxAgeSeconds int
	Secure        bool
}

// Session resolves the caller's session from the cookie or header. A missing,
// expired or tampered token starts a fresh session.
func Session(tokens TokenIssuer, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := strings.TrimSpace(c.GetHeader(SessionHeader))
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = cookie
			}
		}

		if token != "" {
			if id, err := tokens.Verify(token); err == nil {
				c.Set(sessionIDKey, id)
				c.Next()
				return
			}
			telemetry.Info("session.token_rejected", map[string]any{
				"request_id": RequestIDFromContext(c),
				"path":       c.Request.URL.Path,
			})
		}

		id := uuid.NewString()
		signed, err := tokens.Issue(id)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal", "Unable to start session", nil)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, signed, opts.MaxAgeSeconds, "/", "", opts.Secure, true)
		c.Writer.Header().Set(SessionHeader, signed)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
