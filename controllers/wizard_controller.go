package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/internal/wizard"
	"voxarena/models"
)

type WizardController struct {
	wizards *wizard.Service
	log     logrus.FieldLogger
}

func NewWizardController(wizards *wizard.Service, log logrus.FieldLogger) *WizardController {
	return &WizardController{wizards: wizards, log: log}
}

// wizardBody adds the gate result for the current step so the client can
// enable or disable "Next".
func wizardBody(w *wizard.Wizard) gin.H {
	ok, problems := w.Gate(w.Current)
	return gin.H{
		"wizard":        w,
		"step":          w.Current.String(),
		"canAdvance":    ok,
		"problems":      problems,
		"totalDuration": w.TotalDuration(),
		"constraints":   w.Constraints(),
	}
}

// respond answers with the session. Errors that leave a session behind
// carry its state next to the error.
func (h *WizardController) respond(c *gin.Context, w *wizard.Wizard, err error) {
	if err == nil {
		c.JSON(http.StatusOK, wizardBody(w))
		return
	}
	if w == nil {
		respondError(c, h.log, err)
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("wizard", w.ID).Error("Wizard request failed")
	}
	body := wizardBody(w)
	for k, v := range errorBody(err, status) {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *WizardController) Start(c *gin.Context) {
	w, err := h.wizards.Start(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, wizardBody(w))
}

func (h *WizardController) Get(c *gin.Context) {
	w, err := h.wizards.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

type selectTemplateRequest struct {
	// An empty TemplateID switches to a custom format in Mode.
	TemplateID string              `json:"templateId"`
	Mode       models.TemplateMode `json:"mode"`
}

func (h *WizardController) SelectTemplate(c *gin.Context) {
	var req selectTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.TemplateID == "" {
		w, err := h.wizards.ClearTemplate(c.Request.Context(), c.Param("id"), req.Mode)
		h.respond(c, w, err)
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid templateId"})
		return
	}
	w, err := h.wizards.SelectTemplate(c.Request.Context(), c.Param("id"), templateID)
	h.respond(c, w, err)
}

func (h *WizardController) UpdateDetails(c *gin.Context) {
	var d wizard.Details
	if !bindJSON(c, &d) {
		return
	}
	w, err := h.wizards.UpdateDetails(c.Request.Context(), c.Param("id"), d)
	h.respond(c, w, err)
}

func (h *WizardController) UpdateSegments(c *gin.Context) {
	var d wizard.SegmentData
	if !bindJSON(c, &d) {
		return
	}
	w, err := h.wizards.UpdateSegments(c.Request.Context(), c.Param("id"), d)
	h.respond(c, w, err)
}

type moveSegmentRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *WizardController) MoveSegment(c *gin.Context) {
	var req moveSegmentRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.wizards.MoveSegment(c.Request.Context(), c.Param("id"), req.From, req.To)
	h.respond(c, w, err)
}

type participantsRequest struct {
	Participants []models.Participant `json:"participants"`
}

func (h *WizardController) UpdateParticipants(c *gin.Context) {
	var req participantsRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.wizards.UpdateParticipants(c.Request.Context(), c.Param("id"), req.Participants)
	h.respond(c, w, err)
}

func (h *WizardController) RemoveParticipant(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant index"})
		return
	}
	w, err := h.wizards.RemoveParticipant(c.Request.Context(), c.Param("id"), index)
	h.respond(c, w, err)
}

func (h *WizardController) Next(c *gin.Context) {
	w, err := h.wizards.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *WizardController) Back(c *gin.Context) {
	w, err := h.wizards.Back(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

type gotoRequest struct {
	Step wizard.Step `json:"step" binding:"required"`
}

// Goto jumps back to an earlier step.
func (h *WizardController) Goto(c *gin.Context) {
	var req gotoRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.wizards.Goto(c.Request.Context(), c.Param("id"), req.Step)
	h.respond(c, w, err)
}

// Submit creates the debate. On failure the session stays on review with
// lastError set.
func (h *WizardController) Submit(c *gin.Context) {
	d, w, err := h.wizards.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond(c, w, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"debate": d, "wizard": w})
}
