package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
	"github.com/anime-shed/design-inspector-go/internal/logger"
)

// RequestIDHeader carries the correlation ID in both directions
const RequestIDHeader = "X-Request-ID"

// requestID reuses a caller supplied ID or generates one and stores it in the request context
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := logger.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})

		if c.Writer.Status() >= http.StatusBadRequest {
			entry.Error("Request failed")
		} else {
			entry.Info("Request processed")
		}
	}
}

func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// errorHandler renders errors attached with c.Error when the handler did not respond itself
func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

// toAppError maps framework and context errors onto the error taxonomy
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return apperrors.NewTooLargeError("request body too large", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("request timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("request cancelled", err)
	default:
		return apperrors.NewInternalError("request processing failed", err)
	}
}

func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	code := appErr.StatusCode

	logger.FromContext(c.Request.Context()).WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"error_type":  appErr.Type,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	}).Warn("Responding with error")

	message := appErr.Message
	if appErr.Type == apperrors.ErrorTypeInternal {
		message = "internal server error"
	}

	c.AbortWithStatusJSON(code, errorBody(code, message, appErr.Details))
}
