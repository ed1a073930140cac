package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrPersistence  = errors.New("persistence error")
	ErrNotification = errors.New("notification error")
)

// fail logs err and writes {error: message}; extra fields are merged into the body.
func (h *Handler) fail(c *gin.Context, status int, err error, message string, extra gin.H) {
	log := h.requestLogger(c)
	if status >= http.StatusInternalServerError {
		log.Error(message, "error", err)
	} else {
		log.Warn(message, "error", err)
	}

	body := gin.H{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %v", kind, err)
}
