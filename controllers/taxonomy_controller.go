package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/services"
)

type TaxonomyController struct {
	taxonomy *services.TaxonomyService
	log      logrus.FieldLogger
}

func NewTaxonomyController(taxonomy *services.TaxonomyService, log logrus.FieldLogger) *TaxonomyController {
	return &TaxonomyController{taxonomy: taxonomy, log: log}
}

// ListCategories embeds terms unless ?terms=false.
func (h *TaxonomyController) ListCategories(c *gin.Context) {
	cats, err := h.taxonomy.ListCategories(c.Request.Context(), c.DefaultQuery("terms", "true") != "false")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cats})
}

func (h *TaxonomyController) GetCategory(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	cat, err := h.taxonomy.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *TaxonomyController) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomy.CreateCategory(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *TaxonomyController) UpdateCategory(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomy.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory also removes the category's terms.
func (h *TaxonomyController) DeleteCategory(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ListTerms filters by ?categoryId when given.
func (h *TaxonomyController) ListTerms(c *gin.Context) {
	var categoryID *primitive.ObjectID
	if raw := c.Query("categoryId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid categoryId"})
			return
		}
		categoryID = &id
	}
	terms, err := h.taxonomy.ListTerms(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": terms})
}

func (h *TaxonomyController) GetTerm(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	term, err := h.taxonomy.GetTerm(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

func (h *TaxonomyController) CreateTerm(c *gin.Context) {
	var in services.TermInput
	if !bindJSON(c, &in) {
		return
	}
	term, err := h.taxonomy.CreateTerm(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, term)
}

func (h *TaxonomyController) UpdateTerm(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	var in services.TermInput
	if !bindJSON(c, &in) {
		return
	}
	term, err := h.taxonomy.UpdateTerm(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

func (h *TaxonomyController) DeleteTerm(c *gin.Context) {
	id, ok := objectID(c)
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteTerm(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Term deleted successfully"})
}
