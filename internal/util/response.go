package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// business error codes
const (
	CodeInvalidParam  = 40001
	CodeAlreadyMember = 40002
	CodeDuplicate     = 40003
	CodeAuth          = 40101
	CodeNoSession     = 40102
	CodeForbidden     = 40301
	CodeNotFound      = 40401
	CodeServerErr     = 50001
)

// Error writes a unified error response.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ServerError is the common shortcut for storage failures.
func ServerError(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, CodeServerErr, msg)
}
