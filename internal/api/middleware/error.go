package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/pkg/errors"
	"github.com/adaptiveops/optimizer-backend-go/pkg/utils"
)

// ErrorHandlingMiddleware recovers panics and converts them to a clean
// error response
func ErrorHandlingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
		}).Error("Panic recovered in request handler")

		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// ErrorMappingMiddleware converts errors attached to the context into an
// error response after the handler chain runs
func ErrorMappingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")

		if appErr, ok := err.(*errors.AppError); ok {
			utils.SendError(c, appErr.Code, appErr.Message)
			return
		}

		utils.SendError(c, errors.GetStatusCode(err), "Internal server error")
	}
}
