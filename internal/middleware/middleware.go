package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
	"function-gateway/internal/telemetry"
)

// CORS middleware for handling Cross-Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Abort records err for the ErrorNormalizer and stops the chain
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorNormalizer turns every failed request into a JSON error envelope. It
// must be installed before any middleware that can fail a request. Errors
// that already carry an envelope are written as-is; any other error, and any
// framework response with an error status and no body, becomes an UNKNOWN
// envelope. Responses with status >= 500 are sent to reporter.
func ErrorNormalizer(reporter telemetry.Reporter) gin.HandlerFunc {
	if reporter == nil {
		reporter = telemetry.NopReporter{}
	}

	return func(c *gin.Context) {
		c.Next()

		var httpErr *apierror.HTTPError
		if last := c.Errors.Last(); last != nil {
			httpErr = apierror.From(last.Err)
		} else if status := c.Writer.Status(); status >= http.StatusBadRequest && !c.Writer.Written() {
			httpErr = apierror.FromStatus(status)
		} else {
			return
		}

		env := httpErr.ToEnvelope()

		fields := logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     env.Status,
			"type":       env.Type,
			"error":      httpErr.Error(),
		}
		if env.Status >= http.StatusInternalServerError {
			logrus.WithFields(fields).Error("Request failed")
			reporter.Report(c, httpErr)
		} else {
			logrus.WithFields(fields).Warn("Request rejected")
		}

		if c.Writer.Written() {
			// The handler already started the response; nothing left to reshape.
			return
		}

		body, err := json.Marshal(env)
		if err != nil {
			body = []byte(fmt.Sprintf(`{"type":%q,"title":%q,"status":%d,"detail":%q}`,
				apierror.TypeUnknown, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError, apierror.FallbackDetail))
		}

		c.Writer.Header().Del("Content-Length")
		c.Data(env.Status, "application/json", body)
	}
}

// Recovery converts panics into a 500 for the ErrorNormalizer
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		Abort(c, apierror.Wrap(err))
	})
}
