// Package response standardizes the JSON envelope of the HTTP API.
package response

import (
	"net/http"

	"github.com/bookwise/service-availability/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// Success writes a 200 response with the standard data envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// Created writes a 201 response with the standard data envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// Paginated writes a 200 response carrying a page of items plus paging
// metadata.
func Paginated(c *gin.Context, items any, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with a validation error body.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, apperrors.CodeValidation, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, message)
}

// Error writes the response matching an application error, falling back to
// 500 for anything untyped.
func Error(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		writeError(c, statusFor(appErr.Code), appErr.Code, appErr.Message)
		return
	}
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code apperrors.Code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
