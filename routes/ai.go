package routes

import (
	"github.com/gin-gonic/gin"

	m "voxarena/middlewares"
)

func SetupAIRoutes(api *gin.RouterGroup, deps Dependencies, rbac guard) {
	h := deps.AI
	api.GET("/ai-prompt-logs", rbac("ai-prompt-logs", m.ActionRead), h.PromptLogs)
	api.GET("/ai-providers/models", rbac("ai-providers", m.ActionRead), h.Models)
	api.GET("/persona-form-config", rbac("persona-form-config", m.ActionRead), h.FormConfig)
	api.POST("/persona-form-config/reload", rbac("persona-form-config", m.ActionManage), h.ReloadFormConfig)
}
