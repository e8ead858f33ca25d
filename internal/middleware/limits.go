package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"function-gateway/internal/apierror"
)

// RateLimiter rejects requests above requestsPerSecond with a 429 envelope
func RateLimiter(requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"limit_rps":  requestsPerSecond,
			}).Warn("Rate limit exceeded")

			Abort(c, apierror.FromStatus(http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies. Declared lengths over
// the limit are rejected up front; undeclared ones fail when the body is read.
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			logrus.WithFields(logrus.Fields{
				"request_id":     c.GetString(RequestIDKey),
				"content_length": c.Request.ContentLength,
				"max_size":       maxSize,
			}).Warn("Request body too large")

			Abort(c, apierror.FromStatus(http.StatusRequestEntityTooLarge))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
