package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/scrapbook"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

// RegisterAPI mounts /auth and the authenticated /api/v1 tree. The after
// middlewares run once the caller is known (rate limiting per identity).
func RegisterAPI(r *gin.Engine, app *scrapbook.App, sess *sessions.Service, after ...gin.HandlerFunc) {
	auth := NewAuthHandler(sess)
	auth.Register(r.Group("/"))

	api := r.Group("/api/v1", middleware.AuthMiddleware(sess))
	api.Use(after...)
	api.GET("/me", auth.Me)

	RegisterCollections(api, app)
	NewNotificationHandler(app.Notifications).Register(api)
	NewImageHandler(app.Assets).Register(api)
}
