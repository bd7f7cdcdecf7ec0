package api

import (
	"net/http"
	"strings"

	"tasleem/internal/models"
	"tasleem/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "sid"
	userKey       = "user"
	tokenKey      = "session_token"
)

// sessionToken reads the session from the sid cookie or a Bearer header
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// requireAuth loads the session user, answering 401 without one
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		user, err := h.svc.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// requireAdmin answers 403 unless the session user is an admin
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": service.MsgForbidden})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.svc.Auth.SessionTTL().Seconds()), "/", "", h.cookieSecure, true)
	c.Header("X-Session-Token", token)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.cookieSecure, true)
}
