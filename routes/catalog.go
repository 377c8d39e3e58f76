package routes

import (
	"github.com/gin-gonic/gin"

	m "voxarena/middlewares"
)

// SetupCatalogRoutes mounts templates, personas, taxonomy and modes.
func SetupCatalogRoutes(api *gin.RouterGroup, deps Dependencies, rbac guard) {
	templates := api.Group("/format-templates")
	{
		h := deps.Templates
		templates.GET("", rbac("format-templates", m.ActionRead), h.List)
		templates.POST("", rbac("format-templates", m.ActionWrite), h.Create)
		templates.GET("/:id", rbac("format-templates", m.ActionRead), h.Get)
		templates.PUT("/:id", rbac("format-templates", m.ActionWrite), h.Update)
		templates.DELETE("/:id", rbac("format-templates", m.ActionDelete), h.Delete)
	}

	personas := api.Group("/personas")
	{
		h := deps.Personas
		personas.GET("", rbac("personas", m.ActionRead), h.List)
		personas.POST("", rbac("personas", m.ActionWrite), h.Create)
		personas.GET("/:id", rbac("personas", m.ActionRead), h.Get)
		personas.PUT("/:id", rbac("personas", m.ActionWrite), h.Update)
		personas.DELETE("/:id", rbac("personas", m.ActionDelete), h.Delete)
		personas.POST("/:id/generate-description", rbac("personas", m.ActionGenerate), h.GenerateDescription)
		personas.POST("/:id/generate-avatar", rbac("personas", m.ActionGenerate), h.GenerateAvatar)
	}

	categories := api.Group("/taxonomy-categories")
	{
		h := deps.Taxonomy
		categories.GET("", rbac("taxonomy", m.ActionRead), h.ListCategories)
		categories.POST("", rbac("taxonomy", m.ActionWrite), h.CreateCategory)
		categories.GET("/:id", rbac("taxonomy", m.ActionRead), h.GetCategory)
		categories.PUT("/:id", rbac("taxonomy", m.ActionWrite), h.UpdateCategory)
		categories.DELETE("/:id", rbac("taxonomy", m.ActionDelete), h.DeleteCategory)
	}

	terms := api.Group("/taxonomy-terms")
	{
		h := deps.Taxonomy
		terms.GET("", rbac("taxonomy", m.ActionRead), h.ListTerms)
		terms.POST("", rbac("taxonomy", m.ActionWrite), h.CreateTerm)
		terms.GET("/:id", rbac("taxonomy", m.ActionRead), h.GetTerm)
		terms.PUT("/:id", rbac("taxonomy", m.ActionWrite), h.UpdateTerm)
		terms.DELETE("/:id", rbac("taxonomy", m.ActionDelete), h.DeleteTerm)
	}

	modes := api.Group("/debate-modes")
	{
		h := deps.Modes
		modes.GET("", rbac("debate-modes", m.ActionRead), h.List)
		modes.POST("", rbac("debate-modes", m.ActionWrite), h.Create)
		modes.GET("/slug/:slug", rbac("debate-modes", m.ActionRead), h.GetBySlug)
		modes.GET("/:id", rbac("debate-modes", m.ActionRead), h.Get)
		modes.PUT("/:id", rbac("debate-modes", m.ActionWrite), h.Update)
		modes.DELETE("/:id", rbac("debate-modes", m.ActionDelete), h.Delete)
	}
}
