package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/models"
	"voxarena/services"
)

type TemplateController struct {
	templates *services.TemplateService
	log       logrus.FieldLogger
}

func NewTemplateController(templates *services.TemplateService, log logrus.FieldLogger) *TemplateController {
	return &TemplateController{templates: templates, log: log}
}

func (h *TemplateController) List(c *gin.Context) {
	res, err := h.templates.List(c.Request.Context(), models.TemplateFilter{
		Search:   c.Query("search"),
		Mode:     models.TemplateMode(strings.ToUpper(c.Query("mode"))),
		Category: c.Query("category"),
		Page:     pageFromQuery(c),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *TemplateController) Get(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	t, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateController) Create(c *gin.Context) {
	var in services.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.templates.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TemplateController) Update(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in services.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.templates.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete answers 409 for preset templates.
func (h *TemplateController) Delete(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
