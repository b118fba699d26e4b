package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope mirrors the client contract: every response carries ok, code and
// message; data is present only when there is a payload.
func envelope(code int, message string, data interface{}) gin.H {
	h := gin.H{"ok": 0, "code": code, "message": message}
	if code < http.StatusBadRequest {
		h["ok"] = 1
	}
	if data != nil {
		h["data"] = data
	}
	return h
}

// OK sends a 200 response.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope(http.StatusOK, message, data))
}

// Created sends a 201 response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, envelope(http.StatusCreated, message, data))
}

// BadRequest sends a 400 error for user-correctable validation failures.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope(http.StatusBadRequest, message, nil))
}

// Unauthorized sends a 401 error with a specific reason string; the reason
// drives client behavior (silent refresh vs forced re-login).
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope(http.StatusUnauthorized, message, nil))
}

// Forbidden sends a 403 error.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, envelope(http.StatusForbidden, message, nil))
}

// NotFound sends a 404 error.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, envelope(http.StatusNotFound, message, nil))
}

// Conflict sends a 409 error for duplicate unique keys.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, envelope(http.StatusConflict, message, nil))
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, envelope(http.StatusUnprocessableEntity, message, nil))
}

// InternalError sends a generic 500; the underlying error is logged at the
// boundary, never surfaced to the caller.
func InternalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, envelope(http.StatusInternalServerError, "Internal server error", nil))
}
