package response

import "github.com/gin-gonic/gin"

// ErrorExtras is the payload of a failed request.
type ErrorExtras struct {
	Message string `json:"message"`
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			ErrorExtras{Message: message},
		))
}
