package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appointmentsvc "github.com/brightpath/scheduler-api/internal/service/appointment"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
)

func Success(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

// Error maps core errors onto HTTP responses. Conflicts carry the colliding
// appointment so the operator can pick a different slot.
func Error(c *gin.Context, err error) {
	var conflict *appointmentsvc.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"status":                  "error",
			"message":                 conflict.Error(),
			"conflicting_appointment": conflict.Conflicting,
		})
		return
	}

	status := http.StatusInternalServerError
	switch apperrors.Code(err) {
	case apperrors.ErrValidation:
		status = http.StatusBadRequest
	case apperrors.ErrConflict:
		status = http.StatusConflict
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrDependency:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"status": "error", "message": err.Error()})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": msg})
}
