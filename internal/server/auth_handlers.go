// file: internal/server/auth_handlers.go
// version: 1.2.0
// guid: 6e2c8a40-1f57-4b93-a8d6-0c4e7f2b9d15

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/config"
	"github.com/mhagen/dealerfinder/internal/database"
	servermiddleware "github.com/mhagen/dealerfinder/internal/server/middleware"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL     = 24 * time.Hour
	minPasswordLen = 8
)

// userView is the subset of a user safe to return to clients.
type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *database.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.Roles,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// sessionView decorates a session with whether it is the one making the
// request, so clients can mark "this device" in a session list.
type sessionView struct {
	database.Session
	Current bool `json:"current"`
}

func buildSessionList(sessions []database.Session, currentID string) []sessionView {
	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView{
			Session: session,
			Current: session.ID == currentID,
		})
	}
	return views
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (r *credentialsRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// authenticate looks the user up and checks the password, reporting only a
// combined yes/no so responses never reveal which part failed.
func authenticate(store database.Store, username, password string) (*database.User, bool) {
	user, err := store.GetUserByUsername(username)
	if err != nil || user == nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, false
	}
	return user, true
}

func requestIsHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

// writeSessionCookie sets the session cookie; a negative maxAge clears it.
func writeSessionCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     servermiddleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestIsHTTPS(c),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) getAuthStatus(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	count, err := store.CountUsers()
	if err != nil {
		RespondWithInternalError(c, "failed to read auth status")
		return
	}

	authEnabled := config.AppConfig.EnableAuth
	c.JSON(http.StatusOK, gin.H{
		"has_users":       count > 0,
		"auth_enabled":    authEnabled,
		"requires_auth":   authEnabled && count > 0,
		"bootstrap_ready": authEnabled && count == 0,
	})
}

func (s *Server) setupInitialAdmin(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	var req credentialsRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	req.normalize()
	if req.Username == "" {
		RespondWithValidationError(c, "username", "must not be empty")
		return
	}
	if len(req.Password) < minPasswordLen {
		RespondWithValidationError(c, "password", "must be at least 8 characters")
		return
	}
	if req.Email == "" {
		req.Email = req.Username + "@local"
	}

	count, err := store.CountUsers()
	if err != nil {
		RespondWithInternalError(c, "failed to check existing users")
		return
	}
	if count > 0 {
		RespondWithError(c, http.StatusConflict, "initial setup already completed", "CONFLICT")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondWithInternalError(c, "failed to hash password")
		return
	}

	admin, err := store.CreateUser(req.Username, req.Email, "bcrypt", string(hash), []string{"admin"}, "active")
	if err != nil {
		RespondWithBadRequest(c, "failed to create initial user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "admin user created",
		"user":    newUserView(admin),
	})
}

func (s *Server) login(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	var req credentialsRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	req.normalize()
	if req.Username == "" || req.Password == "" {
		RespondWithBadRequest(c, "username and password are required")
		return
	}

	user, ok := authenticate(store, req.Username, req.Password)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "invalid credentials", "UNAUTHORIZED")
		return
	}

	session, err := store.CreateSession(user.ID, c.ClientIP(), c.Request.UserAgent(), sessionTTL)
	if err != nil {
		RespondWithInternalError(c, "failed to create session")
		return
	}

	writeSessionCookie(c, session.ID, int(time.Until(session.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"user":    newUserView(user),
		"session": session,
	})
}

func (s *Server) me(c *gin.Context) {
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "not authenticated", "UNAUTHORIZED")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

func (s *Server) logout(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	if session, ok := servermiddleware.CurrentSession(c); ok {
		_ = store.RevokeSession(session.ID)
	}
	writeSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) listMySessions(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "not authenticated", "UNAUTHORIZED")
		return
	}

	sessions, err := store.ListUserSessions(user.ID)
	if err != nil {
		RespondWithInternalError(c, "failed to list sessions")
		return
	}

	currentID := ""
	if current, ok := servermiddleware.CurrentSession(c); ok {
		currentID = current.ID
	}
	c.JSON(http.StatusOK, gin.H{"sessions": buildSessionList(sessions, currentID)})
}

func (s *Server) revokeMySession(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "not authenticated", "UNAUTHORIZED")
		return
	}

	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		RespondWithBadRequest(c, "session id required")
		return
	}

	target, err := store.GetSession(sessionID)
	if err != nil || target == nil {
		RespondWithNotFound(c, "session", sessionID)
		return
	}
	if target.UserID != user.ID {
		RespondWithForbidden(c, "cannot revoke another user's session")
		return
	}

	if err := store.RevokeSession(sessionID); err != nil {
		RespondWithInternalError(c, "failed to revoke session")
		return
	}

	if current, ok := servermiddleware.CurrentSession(c); ok && current.ID == sessionID {
		writeSessionCookie(c, "", -1)
	}
	c.Status(http.StatusNoContent)
}
