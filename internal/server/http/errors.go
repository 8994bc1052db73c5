package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/gin-gonic/gin"
)

// errorMessages are the user-facing texts for one endpoint. Driver and
// storage errors are logged, never returned.
type errorMessages struct {
	notFound string
	database string
}

var (
	uploadMessages   = errorMessages{notFound: "Guest not found", database: "Failed to save photo metadata"}
	galleryMessages  = errorMessages{notFound: "Photo not found", database: "Failed to load photos"}
	reactionMessages = errorMessages{notFound: "Photo not found", database: "Failed to save reaction"}
)

// statusFor maps the error taxonomy to an HTTP status and message.
func statusFor(err error, m errorMessages) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Reason
	case errors.Is(err, common.ErrStorageWrite):
		return http.StatusInternalServerError, "Failed to upload file"
	case errors.Is(err, common.ErrDatabase):
		return http.StatusInternalServerError, m.database
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, m.notFound
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *handler) writeError(c *gin.Context, err error, m errorMessages) {
	status, msg := statusFor(err, m)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), msg, "error", err, "request_id", c.GetString(ctxKeyRequestID))
	}
	c.JSON(status, gin.H{"error": msg})
}
