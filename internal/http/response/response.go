// Package response writes the JSON bodies every handler shares.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error payload: {"error": {"code": ..., "message": ...}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RespondMessage aborts the chain with a user facing error message.
func RespondMessage(c *gin.Context, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func RespondOK(c *gin.Context, payload any)       { c.JSON(http.StatusOK, payload) }
func RespondCreated(c *gin.Context, payload any)  { c.JSON(http.StatusCreated, payload) }
func RespondAccepted(c *gin.Context, payload any) { c.JSON(http.StatusAccepted, payload) }
func RespondNoContent(c *gin.Context)             { c.Status(http.StatusNoContent) }
