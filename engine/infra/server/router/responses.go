package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the canonical success envelope.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Problem is the canonical error envelope.
type Problem struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Status: http.StatusOK, Message: message, Data: data})
}

func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Status: http.StatusCreated, Message: message, Data: data})
}

func RespondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, Response{Status: http.StatusAccepted, Message: message, Data: data})
}

func RespondProblem(c *gin.Context, status int, code, message string) {
	c.JSON(status, Problem{Status: status, Error: message, Code: code})
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondProblem(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondNotFound(c *gin.Context, message string) {
	RespondProblem(c, http.StatusNotFound, "NOT_FOUND", message)
}

func RespondInternalError(c *gin.Context, message string) {
	RespondProblem(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
