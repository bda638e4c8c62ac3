package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Content any    `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, content any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Content: content})
}

func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, Envelope{Success: false, Message: msg})
}

func AbortFail(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, Envelope{Success: false, Message: msg})
}
