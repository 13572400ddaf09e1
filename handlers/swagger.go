package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the scrapbook API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>scrapbook API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document. Every /api/v1 route needs a bearer token from /auth/login.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "scrapbook", "version": "v1.0.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } } },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Log in with one of the two accounts",
        "security": [],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "session token and user" }, "401": { "description": "wrong username or password" } }
      }
    },
    "/auth/logout": { "post": { "summary": "End the session of the bearer token", "responses": { "200": { "description": "logged out" } } } },
    "/api/v1/me": { "get": { "summary": "Current user", "responses": { "200": { "description": "user" }, "401": { "description": "not signed in" } } } },
    "/api/v1/{table}": {
      "get": { "summary": "List rows in default order (language_entries accepts ?language=)", "responses": { "200": { "description": "rows" }, "502": { "description": "store unavailable" } } },
      "post": { "summary": "Create a row; shareable kinds notify the partner", "responses": { "201": { "description": "id" }, "400": { "description": "validation failed" } } }
    },
    "/api/v1/{table}/{id}": {
      "get": { "summary": "Get one row", "responses": { "200": { "description": "row" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Apply the fields present in the body", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a row and its image", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/v1/{table}/{id}/toggle": { "post": { "summary": "Set recipes.is_favorite or locations.visited", "responses": { "200": { "description": "new value" } } } },
    "/api/v1/daily_messages/by-date/{date}": {
      "get": { "summary": "Message for one day", "responses": { "200": { "description": "message" }, "404": { "description": "none that day" } } },
      "delete": { "summary": "Delete every message of one day", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/v1/notifications": { "get": { "summary": "Caller's notifications, newest first (?unread=true)", "responses": { "200": { "description": "notifications" } } } },
    "/api/v1/notifications/{id}/read": { "post": { "summary": "Mark one read", "responses": { "204": { "description": "done" } } } },
    "/api/v1/notifications/read-all": { "post": { "summary": "Mark all read", "responses": { "204": { "description": "done" } } } },
    "/api/v1/notifications/{id}": { "delete": { "summary": "Delete one", "responses": { "204": { "description": "done" } } } },
    "/api/v1/notifications/ws": { "get": { "summary": "Websocket push of new notifications", "responses": { "101": { "description": "switching protocols" } } } },
    "/api/v1/images": {
      "post": { "summary": "Upload multipart file (field file, optional folder)", "responses": { "201": { "description": "public url" } } },
      "delete": { "summary": "Remove an uploaded image by url", "responses": { "204": { "description": "done" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
