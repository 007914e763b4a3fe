package middleware

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"product-inventory-api/pkg/lambda"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// RequestIDHeader carries the request ID in and out of the dev server
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewLogger builds the application logger. Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	return logger
}

// LogEvent records an incoming request on arrival. The body is only logged at debug level.
func LogEvent(logger *logrus.Logger, req *lambda.Request) {
	fields := logrus.Fields{
		"request_id": req.RequestID,
		"method":     req.Method,
		"path":       req.Path,
	}
	if len(req.QueryParams) > 0 {
		fields["query"] = req.QueryParams
	}

	entry := logger.WithFields(fields)
	entry.Info("Request received")

	if len(req.Body) > 0 && logger.IsLevelEnabled(logrus.DebugLevel) {
		entry.WithField("body", string(req.Body)).Debug("Request body")
	}
}

// LogInvocation records the outcome of a routed request
func LogInvocation(logger *logrus.Logger, req *lambda.Request, route string, status int, latency time.Duration) {
	entry := logger.WithFields(logrus.Fields{
		"request_id":  req.RequestID,
		"method":      req.Method,
		"path":        req.Path,
		"route":       route,
		"status_code": status,
		"latency_ms":  float64(latency.Nanoseconds()) / 1000000,
	})

	switch {
	case status >= 500:
		entry.Error("Server error")
	case status >= 400:
		entry.Warn("Client error")
	default:
		entry.Info("Request completed")
	}
}

// RequestID middleware adds a unique request ID to each request
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

// StructuredLogger provides structured logging with request context
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Capture request body for logging (be careful with large payloads)
		var requestBody []byte
		if c.Request.Body != nil && c.Request.ContentLength >= 0 && c.Request.ContentLength < 1024*10 {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		responseBodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = responseBodyWriter

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

		if gin.Mode() == gin.DebugMode && len(requestBody) > 0 {
			fields["request_body"] = string(requestBody)
		}

		if gin.Mode() == gin.DebugMode && status >= 400 && responseBodyWriter.body.Len() < 1024 {
			fields["response_body"] = responseBodyWriter.body.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("HTTP request completed")
		}
	}
}
