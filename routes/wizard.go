package routes

import (
	"github.com/gin-gonic/gin"

	m "voxarena/middlewares"
)

func SetupWizardRoutes(api *gin.RouterGroup, deps Dependencies, rbac guard) {
	h := deps.Wizard
	wizard := api.Group("/wizard", rbac("debates", m.ActionWrite))
	{
		wizard.POST("", h.Start)
		wizard.GET("/:id", h.Get)
		wizard.POST("/:id/template", h.SelectTemplate)
		wizard.PUT("/:id/details", h.UpdateDetails)
		wizard.PUT("/:id/segments", h.UpdateSegments)
		wizard.POST("/:id/segments/move", h.MoveSegment)
		wizard.PUT("/:id/participants", h.UpdateParticipants)
		wizard.DELETE("/:id/participants/:index", h.RemoveParticipant)
		wizard.POST("/:id/next", h.Next)
		wizard.POST("/:id/back", h.Back)
		wizard.POST("/:id/goto", h.Goto)
		wizard.POST("/:id/submit", h.Submit)
	}
}
