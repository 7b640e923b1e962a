package handlers

import (
	"gigbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request logger if one was set, else the global one,
// tagged with the route.
func getLogger(c *gin.Context) *zap.Logger {
	logger := utils.GetLogger()
	if l, exists := c.Get("logger"); exists {
		if rl, ok := l.(*zap.Logger); ok {
			logger = rl
		}
	}
	return logger.With(zap.String("method", c.Request.Method), zap.String("route", c.FullPath()))
}
