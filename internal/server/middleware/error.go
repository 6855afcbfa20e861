package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler is a custom error handling middleware that handles all errors returned by handlers
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// check if there is an error, if so, get the last error
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			// first, we need to check if it's a rich RFC 9457 problem
			if problem, ok := err.(*domain.Problem); ok {
				// if there is an internal log attached, log it
				if problem.Log != nil {
					logger.Error("Request failed", zap.Int("status", problem.Status), zap.Error(problem.Log))
				}

				// RFC 9457 dictates the json is at the root
				c.JSON(problem.Status, problem)
				c.Abort()
				return
			}

			// then the flat application error shape
			if appErr, ok := err.(*domain.Error); ok {
				if appErr.Log != nil {
					logger.Error("Request failed", zap.Int("status", appErr.Code), zap.Error(appErr.Log))
				}

				c.JSON(appErr.Code, api.ErrorResponse{Message: appErr.Message})
				c.Abort()
				return
			}

			// at this point it's an unknown error.
			// we just fall through to 500 for a catch-all server error
			logger.Error("Unhandled error", zap.Error(err))

			// send the JSON response in a standard error shape
			c.JSON(http.StatusInternalServerError, domain.New(
				http.StatusInternalServerError,
				"Internal Server Error",
				"An unexpected error occurred.",
			))

			// we want to prevent the other middleware from writing to the response
			c.Abort()
		}
	}
}
