package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExposeErrorDetails adds the underlying error to 500 responses. Only
// enabled in development.
var ExposeErrorDetails bool

type JSONResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes the resource itself as the response body.
func RespondJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

func RespondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// RespondInternal logs err and answers 500 with a generic message.
func RespondInternal(c *gin.Context, err error) {
	ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)

	resp := JSONResponse{Status: false, Message: "Server error"}
	if ExposeErrorDetails {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
