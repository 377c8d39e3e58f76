package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/config"
	"voxarena/internal/format"
	"voxarena/internal/wizard"
	"voxarena/models"
	"voxarena/services"
)

// statusFor maps service and store errors to HTTP status codes.
func statusFor(err error) int {
	var verr *services.ValidationError
	var conflict *services.ConflictError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &conflict),
		errors.Is(err, models.ErrDuplicate),
		errors.Is(err, wizard.ErrNotOnReview):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound), errors.Is(err, wizard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrReloadDisabled):
		return http.StatusForbidden
	case errors.Is(err, wizard.ErrStepBlocked),
		errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrAlreadyOnFirst),
		errors.Is(err, wizard.ErrAlreadyOnLast),
		errors.Is(err, wizard.ErrParticipantIndex),
		errors.Is(err, format.ErrIndexOutOfRange),
		errors.Is(err, format.ErrNotReorderable),
		errors.Is(err, format.ErrCrossesLocked):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorBody(err error, status int) gin.H {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return gin.H{"error": "Validation failed", "details": verr.Problems}
	}
	switch status {
	case http.StatusNotFound:
		return gin.H{"error": "Not found", "message": err.Error()}
	case http.StatusInternalServerError:
		return gin.H{"error": "Internal server error", "message": err.Error()}
	}
	return gin.H{"error": err.Error()}
}

// respondError writes the JSON error response for err.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.JSON(status, errorBody(err, status))
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": details})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return false
	}
	return true
}

// objectID parses the :id path parameter.
func objectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func pageFromQuery(c *gin.Context) models.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return models.Page{Page: page, PageSize: size}.Normalize()
}
