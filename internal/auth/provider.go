package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/database"
)

const (
	contextKeyUser   = "user"
	contextKeyUserID = "user_id"

	sessionKeyUserID = "user_id"
)

// UserLookup loads the account a credential points at.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
}

// TokenProvider authenticates API requests with bearer tokens.
type TokenProvider struct {
	users  UserLookup
	secret []byte
}

// NewTokenProvider creates a bearer token provider backed by users.
func NewTokenProvider(users UserLookup, secretKey string) *TokenProvider {
	return &TokenProvider{
		users:  users,
		secret: []byte(secretKey),
	}
}

// RequireAuth returns middleware that rejects requests without a valid token
// for an active user with 401.
func (p *TokenProvider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "authentication credentials were not provided")
			return
		}

		userID, err := ParseToken(raw, p.secret)
		if err != nil {
			log.Debug("rejected token", "error", err)
			unauthorized(c, "invalid token")
			return
		}

		user, err := p.users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Error("failed to load token user", "user_id", userID, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			unauthorized(c, "user inactive or deleted")
			return
		}
		if !user.IsActive {
			unauthorized(c, "user inactive or deleted")
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <t>" or
// "Authorization: Token <t>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// SessionProvider authenticates admin pages with a cookie session.
type SessionProvider struct {
	users     UserLookup
	loginPath string
}

// NewSessionProvider creates a session provider that redirects anonymous
// visitors to loginPath.
func NewSessionProvider(users UserLookup, loginPath string) *SessionProvider {
	return &SessionProvider{
		users:     users,
		loginPath: loginPath,
	}
}

// RequireStaff returns middleware that only lets active staff users through.
func (p *SessionProvider) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionKeyUserID).(uint)
		if !ok || userID == 0 {
			c.Redirect(http.StatusFound, p.loginPath)
			c.Abort()
			return
		}

		user, err := p.users.GetUserByID(c.Request.Context(), userID)
		if err != nil || !user.IsActive || !user.IsStaff {
			if err != nil && !errors.Is(err, database.ErrNotFound) {
				log.Error("failed to load session user", "user_id", userID, "error", err)
			}
			session.Delete(sessionKeyUserID)
			if err := session.Save(); err != nil {
				log.Error("failed to clear session", "error", err)
			}
			c.Redirect(http.StatusFound, p.loginPath)
			c.Abort()
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// Login stores user in the session.
func (p *SessionProvider) Login(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	return session.Save()
}

// Logout clears the session.
func (p *SessionProvider) Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// CurrentUser returns the user stored by one of the middlewares.
func CurrentUser(c *gin.Context) (*database.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*database.User)
	return user, ok && user != nil
}
