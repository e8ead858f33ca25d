package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// RequestIDHeader carries the request ID in and out of the gateway
const RequestIDHeader = "X-Request-ID"

// maxLoggedBody bounds the response body captured for debug logs
const maxLoggedBody = 1024

// responseWriter wraps gin.ResponseWriter to capture the start of the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if remaining := maxLoggedBody - w.body.Len(); remaining > 0 {
		if len(b) < remaining {
			remaining = len(b)
		}
		w.body.Write(b[:remaining])
	}
	return w.ResponseWriter.Write(b)
}

// RequestID middleware adds a unique request ID to each request, keeping the
// caller's X-Request-ID when one is supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request with its outcome and latency
func StructuredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		var captured *responseWriter
		if gin.Mode() == gin.DebugMode {
			captured = &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = captured
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":     c.GetString(RequestIDKey),
			"method":         c.Request.Method,
			"path":           path,
			"status_code":    status,
			"latency_ms":     float64(latency.Nanoseconds()) / 1000000,
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
			"content_length": c.Request.ContentLength,
			"response_size":  c.Writer.Size(),
		}

		if raw != "" {
			fields["query"] = raw
		}
		if subject := c.GetString(SubjectKey); subject != "" {
			fields["subject"] = subject
		}
		if captured != nil && status >= 400 && captured.body.Len() > 0 {
			fields["response_body"] = captured.body.String()
		}

		switch {
		case status >= 500:
			logrus.WithFields(fields).Error("Server error")
		case status >= 400:
			logrus.WithFields(fields).Warn("Client error")
		case status >= 300:
			logrus.WithFields(fields).Info("Redirect")
		default:
			logrus.WithFields(fields).Info("Request completed")
		}
	}
}
