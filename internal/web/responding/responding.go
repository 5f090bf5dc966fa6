package responding

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HandleError writes the uniform error envelope and logs the underlying
// cause when a request logger is registered.
func HandleError(c *gin.Context, status int, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()

		if logger, ok := c.Get("logger"); ok {
			logger.(*zerolog.Logger).
				Error().
				Err(err).
				Int("status", status).
				Msg(message)
		}
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Message: message,
		Details: details,
	})
}
