package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/sblmetalroofing-oss/Rprime-sub003/internal/errors"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

// bindJSON binds and validates a JSON body, writing the error response on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}

// respondServiceError maps service-level errors onto HTTP responses.
// fallback is the client message for unexpected failures.
func respondServiceError(c *gin.Context, err error, fallback string) {
	respondServiceErrorWithDetails(c, err, fallback, nil)
}

// respondImportError is respondServiceError for imports: the id of the
// failed session, when one was recorded, goes into the error details.
func respondImportError(c *gin.Context, err error, sessionID, fallback string) {
	var details map[string]interface{}
	if sessionID != "" {
		details = map[string]interface{}{"sessionId": sessionID}
	}
	respondServiceErrorWithDetails(c, err, fallback, details)
}

func respondServiceErrorWithDetails(c *gin.Context, err error, fallback string, details map[string]interface{}) {
	switch {
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error(), details)
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAITimeout):
		apierrors.GatewayTimeout(c, "AI service timed out", err, details)
	case errors.Is(err, services.ErrExternalService):
		apierrors.BadGateway(c, "AI service unavailable", err, details)
	case errors.Is(err, services.ErrParse):
		apierrors.UnprocessableEntity(c, err.Error(), details)
	default:
		apierrors.InternalServerErrorWithDetails(c, fallback, err, details)
	}
}
