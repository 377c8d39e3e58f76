package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/config"
	"voxarena/models"
	"voxarena/services"
)

// AIController serves the prompt log, the provider catalogue and the
// persona form configuration.
type AIController struct {
	logs      *services.PromptLogService
	providers *services.Providers
	form      *config.FormConfigStore
	log       logrus.FieldLogger
}

func NewAIController(logs *services.PromptLogService, providers *services.Providers, form *config.FormConfigStore, log logrus.FieldLogger) *AIController {
	return &AIController{logs: logs, providers: providers, form: form, log: log}
}

// PromptLogs supports ?provider, ?purpose, ?entityType and ?success filters.
func (h *AIController) PromptLogs(c *gin.Context) {
	f := models.PromptLogFilter{
		Provider:   c.Query("provider"),
		Purpose:    c.Query("purpose"),
		EntityType: c.Query("entityType"),
		Page:       pageFromQuery(c),
	}
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid success filter"})
			return
		}
		f.Success = &success
	}
	res, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AIController) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.providers.Catalog()})
}

func (h *AIController) FormConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"config": h.form.Get(), "devReload": h.form.DevReload()})
}

func (h *AIController) ReloadFormConfig(c *gin.Context) {
	cfg, err := h.form.Reload()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Persona form config reloaded")
	c.JSON(http.StatusOK, gin.H{"config": cfg, "devReload": true})
}
