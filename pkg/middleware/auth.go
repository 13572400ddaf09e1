package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("auth")

const (
	ctxSession = "session"
	ctxToken   = "token"
	ctxClaims  = "claims"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*sessions.Session, error)
}

// AuthMiddleware returns a Gin middleware that requires a Bearer token naming
// a live session. The session is stored on the context for handlers.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		// browsers cannot set headers on a websocket handshake
		if header == "" && c.IsWebsocket() && c.Query("token") != "" {
			header = "Bearer " + c.Query("token")
		}
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(header, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if errors.Is(err, apperr.ErrStoreUnavailable) {
			log.Errorf("authenticate: %v", err)
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "session store unavailable"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxSession, sess)
		c.Set(ctxToken, token)
		// the rate limiters key on claims.sub
		c.Set(ctxClaims, map[string]interface{}{"sub": sess.Role.String(), "name": sess.Name})
		c.Next()
	}
}

// SessionFrom returns the session set by AuthMiddleware.
func SessionFrom(c *gin.Context) (*sessions.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*sessions.Session)
	return s, ok && s != nil
}

// IdentityFrom returns the caller's role.
func IdentityFrom(c *gin.Context) (identity.Role, bool) {
	s, ok := SessionFrom(c)
	if !ok {
		return "", false
	}
	return s.Role, true
}

// TokenFrom returns the raw bearer token of an authenticated request.
func TokenFrom(c *gin.Context) string { return c.GetString(ctxToken) }

func subject(c *gin.Context) string {
	if v, ok := c.Get(ctxClaims); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if sub, ok3 := cm["sub"].(string); ok3 {
				return sub
			}
		}
	}
	return ""
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
