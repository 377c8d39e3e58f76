package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/services"
)

type ModeController struct {
	modes *services.ModeService
	log   logrus.FieldLogger
}

func NewModeController(modes *services.ModeService, log logrus.FieldLogger) *ModeController {
	return &ModeController{modes: modes, log: log}
}

func (h *ModeController) List(c *gin.Context) {
	modes, err := h.modes.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": modes})
}

func (h *ModeController) Get(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	m, err := h.modes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *ModeController) GetBySlug(c *gin.Context) {
	m, err := h.modes.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *ModeController) Create(c *gin.Context) {
	var in services.ModeInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.modes.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *ModeController) Update(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in services.ModeInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.modes.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Delete answers 409 for the built-in modes.
func (h *ModeController) Delete(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.modes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mode deleted successfully"})
}
