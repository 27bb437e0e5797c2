package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/application/service"
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// ErrorDetail is the data payload of a failed request that names documents
type ErrorDetail struct {
	Problems         []string `json:"problems,omitempty"`
	MissingDocuments []string `json:"missing_documents,omitempty"`
}

// statusFor maps a service error to its HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, completeness.ErrIncompleteDocumentation):
		return http.StatusPreconditionFailed
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, port.ErrVersionConflict),
		errors.Is(err, service.ErrClaimClosed),
		errors.Is(err, service.ErrDuplicateClaim):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	response := Response{Success: false, Error: err.Error()}

	var verr *service.ValidationError
	var incomplete *completeness.IncompleteDocumentationError
	switch {
	case errors.As(err, &verr):
		response.Data = ErrorDetail{Problems: verr.Problems, MissingDocuments: verr.MissingDocuments}
	case errors.As(err, &incomplete):
		response.Data = ErrorDetail{MissingDocuments: incomplete.Missing}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		response.Error = "internal server error"
	}
	c.JSON(status, response)
}
