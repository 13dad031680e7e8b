package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// BadRequest is a shorthand for the common validation-failure reply.
func BadRequest(c *gin.Context, message string, errors interface{}) {
	RespondJSON(c, "error", http.StatusBadRequest, message, nil, errors)
}
