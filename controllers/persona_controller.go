package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/models"
	"voxarena/services"
)

type PersonaController struct {
	personas *services.PersonaService
	log      logrus.FieldLogger
}

func NewPersonaController(personas *services.PersonaService, log logrus.FieldLogger) *PersonaController {
	return &PersonaController{personas: personas, log: log}
}

func (h *PersonaController) List(c *gin.Context) {
	res, err := h.personas.List(c.Request.Context(), models.PersonaFilter{Search: c.Query("search"), Page: pageFromQuery(c)})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PersonaController) Get(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	p, err := h.personas.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create stores the persona. With generateDescription set a description is
// requested as well; a provider failure leaves it empty.
func (h *PersonaController) Create(c *gin.Context) {
	var in services.PersonaInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.personas.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PersonaController) Update(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in services.PersonaInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.personas.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete answers 409 while any debate uses the persona.
func (h *PersonaController) Delete(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.personas.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Persona deleted successfully"})
}

func (h *PersonaController) GenerateDescription(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	p, generated, err := h.personas.GenerateDescription(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": p, "generated": generated})
}

func (h *PersonaController) GenerateAvatar(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	p, generated, err := h.personas.GenerateAvatar(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": p, "generated": generated})
}
