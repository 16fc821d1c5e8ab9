package handlers

import (
	"errors"
	"net/http"

	"licensetracker/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses
func respondServiceError(c *gin.Context, err error) {
	var capErr *service.CapExceededError
	var valErr *service.ValidationError
	var storErr *service.StorageError

	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.As(err, &capErr):
		respondError(c, http.StatusBadRequest, "CAP_EXCEEDED", capErr.Error())
	case errors.As(err, &valErr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.As(err, &storErr):
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "File storage operation failed")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
