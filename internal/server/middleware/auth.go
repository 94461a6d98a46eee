// file: internal/server/middleware/auth.go
// version: 1.1.0
// guid: 2d7f4b91-8e36-4a50-bc29-6d1e8f3a5c74

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/database"
)

const (
	// SessionCookieName is the auth session cookie used by API clients.
	SessionCookieName = "session_id"
	contextUserKey    = "auth_user"
	contextSessionKey = "auth_session"
)

// apiError mirrors the handler layer's ErrorResponse shape so middleware
// rejections look the same on the wire as handler errors.
type apiError struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
}

func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, apiError{Error: message, Code: code, Status: status})
}

// SessionTokenFromRequest extracts the session token, preferring a Bearer
// header over the session cookie.
func SessionTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// CurrentUser fetches the authenticated user from Gin context.
func CurrentUser(c *gin.Context) (*database.User, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.Get(contextUserKey)
	if !ok || value == nil {
		return nil, false
	}
	user, ok := value.(*database.User)
	return user, ok && user != nil
}

// CurrentSession fetches the authenticated session from Gin context.
func CurrentSession(c *gin.Context) (*database.Session, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.Get(contextSessionKey)
	if !ok || value == nil {
		return nil, false
	}
	session, ok := value.(*database.Session)
	return session, ok && session != nil
}

// resolveSession turns a raw token into an authenticated user and session.
// A non-empty reason means the request must be rejected with 401.
func resolveSession(store database.Store, token string) (*database.User, *database.Session, string) {
	if token == "" {
		return nil, nil, "authentication required"
	}

	session, err := store.GetSession(token)
	if err != nil || session == nil {
		return nil, nil, "invalid session"
	}
	if session.Revoked || time.Now().After(session.ExpiresAt) {
		// Expired sessions are revoked on sight so later lookups fail fast.
		_ = store.RevokeSession(session.ID)
		return nil, nil, "session expired"
	}

	user, err := store.GetUserByID(session.UserID)
	if err != nil || user == nil {
		return nil, nil, "invalid session user"
	}
	if status := strings.ToLower(strings.TrimSpace(user.Status)); status != "" && status != "active" {
		return nil, nil, "inactive user"
	}
	return user, session, ""
}

// RequireAuth enforces session auth on the wrapped routes. A nil store
// disables enforcement entirely; a store with zero users leaves the routes
// open so the first admin can be created through the setup endpoint.
func RequireAuth(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		userCount, err := store.CountUsers()
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "failed to check auth state", "INTERNAL_ERROR")
			return
		}
		if userCount == 0 {
			c.Next()
			return
		}

		user, session, reason := resolveSession(store, SessionTokenFromRequest(c.Request))
		if reason != "" {
			abortWithError(c, http.StatusUnauthorized, reason, "UNAUTHORIZED")
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextSessionKey, session)
		c.Next()
	}
}
