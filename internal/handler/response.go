package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/middleware"
)

// ErrorBody is the standard envelope for error responses. safe_for_demo marks
// errors whose reason can be shown verbatim to end users.
type ErrorBody struct {
	Error       string                 `json:"error"`
	Reason      string                 `json:"reason"`
	Module      string                 `json:"module"`
	SafeForDemo bool                   `json:"safe_for_demo"`
	Diagnostics map[string]interface{} `json:"diagnostics,omitempty"`
}

// RespondOK sends a 200 response with the payload merged at the top level.
func RespondOK(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusOK, payload)
}

// RespondData sends a 200 response wrapping the payload under "data". Used for
// list and single-entity reads.
func RespondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// RespondMessage sends a 200 response with a message and merged payload.
func RespondMessage(c *gin.Context, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, errLabel, reason, module string, safeForDemo bool) {
	c.JSON(status, ErrorBody{
		Error:       errLabel,
		Reason:      reason,
		Module:      module,
		SafeForDemo: safeForDemo,
	})
}

// MapDomainError translates domain errors to HTTP status, error label, and
// reason. safe_for_demo is false only for internal failures.
func MapDomainError(err error) (status int, errLabel, reason string, safeForDemo bool) {
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		return http.StatusNotFound, "Not Found", "Shipment not found", true
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "Not Found", "Document not found", true
	case errors.Is(err, domain.ErrQuoteNotFound):
		return http.StatusNotFound, "Not Found", "Quote not found", true
	case errors.Is(err, domain.ErrDriverNotFound):
		return http.StatusNotFound, "Not Found", "Driver not found", true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "Unauthorized", "User not found", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found", "Resource not found", true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized", "Authentication required", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden", "Insufficient permissions", true
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "Invalid input", "Invalid file type. Allowed: PDF, JPEG, PNG", true
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "Invalid input", "File exceeds maximum allowed size", true
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "Internal Server Error", "Failed to upload file to storage", false
	case errors.Is(err, domain.ErrNoExtractedData):
		return http.StatusBadRequest, "Bad Request", "Document has no extracted data", true
	case errors.Is(err, domain.ErrQuoteNotPending):
		return http.StatusConflict, "Conflict", "Quote is not pending", true
	case errors.Is(err, domain.ErrQuoteExpired):
		return http.StatusBadRequest, "Bad Request", "Quote has expired", true
	case errors.Is(err, domain.ErrForwarderAssigned):
		return http.StatusConflict, "Conflict", "Shipment already has a forwarder assigned", true
	case errors.Is(err, domain.ErrInvalidQuoteStatus):
		return http.StatusBadRequest, "Invalid input", "Invalid quote status", true
	case errors.Is(err, domain.ErrMissingQuoteAmount):
		return http.StatusBadRequest, "Missing field", "Quote amount is required", true
	case errors.Is(err, domain.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable, "Service Unavailable", "Database error", true
	default:
		return http.StatusInternalServerError, "Internal Server Error", "An internal error occurred", false
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, module string, err error) {
	status, errLabel, reason, safe := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error in %s: %v", requestID, module, err)
	}
	RespondError(c, status, errLabel, reason, module, safe)
}

// currentUserID extracts the authenticated user ID, writing a 401 response on
// failure.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized", "User not found", "auth", true)
		return uuid.Nil, false
	}
	return userID, true
}
