package web

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationId middleware adds a correlation id to the context from the
// request header and echoes it on the response so payment webhooks and
// redirects can be stitched together across services.
func CorrelationId(c *gin.Context) {
	correlationId := c.GetHeader("x-correlation-id")
	if correlationId == "" {
		correlationId = uuid.New().String()
	}

	c.Set("correlationId", correlationId)
	c.Header("x-correlation-id", correlationId)
}
