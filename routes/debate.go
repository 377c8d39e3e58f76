package routes

import (
	"github.com/gin-gonic/gin"

	m "voxarena/middlewares"
)

func SetupDebateRoutes(api *gin.RouterGroup, deps Dependencies, rbac guard) {
	h := deps.Debates
	debates := api.Group("/debates")
	{
		debates.GET("", rbac("debates", m.ActionRead), h.List)
		debates.POST("", rbac("debates", m.ActionWrite), h.Create)
		debates.GET("/:id", rbac("debates", m.ActionRead), h.Get)
		debates.PUT("/:id", rbac("debates", m.ActionWrite), h.Replace)
		debates.PATCH("/:id", rbac("debates", m.ActionWrite), h.Patch)
		debates.DELETE("/:id", rbac("debates", m.ActionDelete), h.Delete)
		debates.GET("/:id/drift", rbac("debates", m.ActionRead), h.Drift)
		debates.POST("/:id/generate", rbac("debates", m.ActionGenerate), h.Generate)
		debates.POST("/:id/teaser", rbac("debates", m.ActionGenerate), h.Teaser)
		debates.POST("/:id/publish", rbac("debates", m.ActionWrite), h.Publish)
		debates.POST("/:id/documents", rbac("debates", m.ActionWrite), h.UploadDocument)
		debates.GET("/:id/export", rbac("debates", m.ActionRead), h.Export)
		debates.GET("/:id/events", rbac("debates", m.ActionRead), deps.Events.Handle)
	}
}
