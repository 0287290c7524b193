package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taller-inventory/models"
)

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    data,
	})
}

func Error(c *gin.Context, status int, message string, err error) {
	resp := gin.H{"message": message}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(status, resp)
}

// Fail maps domain errors to HTTP status codes and responds.
func Fail(c *gin.Context, message string, err error) {
	Error(c, StatusFor(err), message, err)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
