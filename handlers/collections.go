package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/collection"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/scrapbook"
	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

// RegisterCollections mounts the CRUD routes of every entity kind under rg.
func RegisterCollections(rg *gin.RouterGroup, app *scrapbook.App) {
	registerCollection(rg, app.Milestones)
	registerCollection(rg, app.Memories)
	registerCollection(rg, app.Recipes)
	registerCollection(rg, app.Locations)
	registerCollection(rg, app.LoveLetters)
	registerCollection(rg, app.Jokes)
	registerCollection(rg, app.DateIdeas)
	registerCollection(rg, app.CarePackages)
	registerCollection(rg, app.Countdowns)
	registerCollection(rg, app.Playlists)
	registerCollection(rg, app.Compliments)
	registerCollection(rg, app.Reasons)
	registerCollection(rg, app.LanguageEntries, "language")

	daily := registerCollection(rg, app.DailyMessages)
	daily.GET("/by-date/:date", func(c *gin.Context) {
		list, err := app.DailyMessages.Find(c.Request.Context(), store.Eq(entity.FieldDate, c.Param("date")))
		if err != nil {
			writeError(c, err)
			return
		}
		if len(list) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, list[0])
	})
	daily.DELETE("/by-date/:date", func(c *gin.Context) {
		if err := app.DailyMessages.DeleteWhere(c.Request.Context(), store.Eq(entity.FieldDate, c.Param("date"))); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// registerCollection mounts list/get/create/update/delete for one kind, plus
// the toggle route when the kind has one. Query parameters named in filters
// narrow the list by equality.
func registerCollection[T entity.Entity, P any](rg *gin.RouterGroup, svc *collection.Service[T, P], filters ...string) *gin.RouterGroup {
	d := svc.Descriptor()
	g := rg.Group("/" + d.Table)

	g.GET("", func(c *gin.Context) {
		var f store.Filter
		for _, name := range filters {
			if v, ok := c.GetQuery(name); ok {
				f = f.And(name, v)
			}
		}
		list, err := svc.Find(c.Request.Context(), f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.GET("/:id", func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	g.POST("", func(c *gin.Context) {
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			badRequest(c, err)
			return
		}
		role, _ := middleware.IdentityFrom(c)
		id, err := svc.CreateAs(c.Request.Context(), role, v)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})

	g.PATCH("/:id", func(c *gin.Context) {
		var p P
		if err := c.ShouldBindJSON(&p); err != nil {
			badRequest(c, err)
			return
		}
		id := c.Param("id")
		if err := svc.Update(c.Request.Context(), id, p); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	if d.ToggleField != "" {
		g.POST("/:id/toggle", func(c *gin.Context) {
			var req struct {
				Value *bool `json:"value" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			if err := svc.ToggleField(c.Request.Context(), c.Param("id"), *req.Value); err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{d.ToggleField: *req.Value})
		})
	}
	return g
}
