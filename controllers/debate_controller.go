package controllers

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"voxarena/middlewares"
	"voxarena/models"
	"voxarena/services"
)

// RateLimiter throttles expensive actions per admin.
type RateLimiter interface {
	Allow(ctx context.Context, action, adminID string) (bool, time.Duration, error)
}

type DebateController struct {
	debates    *services.DebateService
	generation *services.GenerationService
	documents  *services.ReviewDocumentService
	export     *services.ExportService
	limiter    RateLimiter
	log        logrus.FieldLogger
}

// NewDebateController wires the debate endpoints. A nil limiter disables
// rate limiting.
func NewDebateController(debates *services.DebateService, generation *services.GenerationService, documents *services.ReviewDocumentService, export *services.ExportService, limiter RateLimiter, log logrus.FieldLogger) *DebateController {
	return &DebateController{debates: debates, generation: generation, documents: documents, export: export, limiter: limiter, log: log}
}

func (h *DebateController) List(c *gin.Context) {
	res, err := h.debates.List(c.Request.Context(), models.DebateFilter{
		Search:   c.Query("search"),
		Status:   models.DebateStatus(strings.ToUpper(c.Query("status"))),
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

func (h *DebateController) Create(c *gin.Context) {
	var in models.DebateInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.debates.CreateDebate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	v, err := h.debates.Get(c.Request.Context(), d.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *DebateController) Get(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	v, err := h.debates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *DebateController) Replace(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in models.DebateInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.debates.Replace(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *DebateController) Patch(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var patch services.DebatePatch
	if !bindJSON(c, &patch) {
		return
	}
	v, err := h.debates.Patch(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *DebateController) Delete(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.debates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Debate deleted successfully"})
}

// Drift answers 404 for debates that were not created from a template.
func (h *DebateController) Drift(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	report, err := h.debates.Drift(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// allow applies the per-admin limit and answers 429 when it is exhausted.
func (h *DebateController) allow(c *gin.Context, action string) bool {
	if h.limiter == nil {
		return true
	}
	allowed, retryAfter, err := h.limiter.Allow(c.Request.Context(), action, middlewares.AdminID(c).Hex())
	if err != nil {
		// Redis trouble should not block authoring.
		h.log.WithError(err).WithField("action", action).Warn("Rate limiter unavailable")
		return true
	}
	if !allowed {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", fmt.Sprint(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many generation requests", "retryAfterSeconds": seconds})
		return false
	}
	return true
}

func (h *DebateController) Generate(c *gin.Context) {
	id, ok := objectID(c)
	if !ok || !h.allow(c, "generate") {
		return
	}
	res, err := h.generation.Generate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DebateController) Teaser(c *gin.Context) {
	id, ok := objectID(c)
	if !ok || !h.allow(c, "teaser") {
		return
	}
	d, generated, err := h.generation.GenerateTeaser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debate": d, "generated": generated})
}

func (h *DebateController) Publish(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	d, err := h.debates.Publish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// UploadDocument accepts a multipart "file" field.
func (h *DebateController) UploadDocument(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required", "message": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload", "message": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, fh.Size+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload", "message": err.Error()})
		return
	}

	doc, err := h.documents.Attach(c.Request.Context(), id, services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Export streams the transcript as ?format=pdf (default) or docx.
func (h *DebateController) Export(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	f := services.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(services.ExportPDF))))
	data, name, err := h.export.Export(c.Request.Context(), id, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, f.ContentType(), data)
}
