package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/internal/tokens"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User is the public view of a signed-in account.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	sessions *sessions.Service
}

func NewAuthHandler(s *sessions.Service) *AuthHandler {
	return &AuthHandler{sessions: s}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
}

// Login checks the username/password pair and returns a session token. The
// token does not expire; it is valid until logout.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, sess, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, sessions.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err != nil {
		log.Errorf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": User{ID: sess.Role.String(), Name: sess.Name}})
}

// Logout ends the session named by the bearer token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var token string
	if n, _ := fmt.Sscanf(c.GetHeader("Authorization"), "Bearer %s", &token); n != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
		return
	}
	err := h.sessions.Logout(c.Request.Context(), token)
	if errors.Is(err, tokens.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if err != nil {
		log.Errorf("logout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the signed-in user. Requires AuthMiddleware.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": User{ID: sess.Role.String(), Name: sess.Name}})
}
