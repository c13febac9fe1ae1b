package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/pkg/apperr"
)

// Wire format: success payloads are plain objects (usually with a
// "success": true flag), failures are always {"error": "..."} with the
// matching HTTP status. The request id travels in the X-Request-ID
// header rather than the body.

func requestID(c *gin.Context) string { return c.GetString("request_id") }

// OK writes a success payload as-is.
func OK(c *gin.Context, status int, payload gin.H) {
	if status == 0 {
		status = http.StatusOK
	}
	if rid := requestID(c); rid != "" {
		c.Header("X-Request-ID", rid)
	}
	c.JSON(status, payload)
}

// Err writes the {"error": msg} shape.
func Err(c *gin.Context, status int, msg string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if rid := requestID(c); rid != "" {
		c.Header("X-Request-ID", rid)
	}
	c.JSON(status, gin.H{"error": msg})
}

// AbortErr writes the error shape and aborts the middleware chain.
func AbortErr(c *gin.Context, status int, msg string) {
	Err(c, status, msg)
	c.Abort()
}

// FromError maps an application error to the wire. Unexpected errors
// become a generic 500; the detail is logged server-side only.
func FromError(c *gin.Context, logger *logrus.Logger, err error) {
	if ae := apperr.From(err); ae != nil {
		Err(c, ae.Status, ae.Message)
		return
	}
	if logger != nil {
		logger.WithError(err).WithField("request_id", requestID(c)).Error("unexpected handler error")
	}
	Err(c, http.StatusInternalServerError, "internal server error")
}
