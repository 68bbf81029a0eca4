package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error" example:"product not found"`
}

func Error(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, ErrorBody{Error: msg})
}

// InternalError answers 500 without leaking the cause.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal error")
}
