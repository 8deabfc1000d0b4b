// Package middleware provides the gin middleware shared by every route.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"task_backend/internal/platform/apperr"
)

var (
	errEndpointNotFound = apperr.NotFound("endpoint not found")
	errMethodNotAllowed = apperr.New(apperr.KindMethodNotAllowed, "method not allowed")
	errInternal         = apperr.New(apperr.KindUnexpected, "internal server error")
)

// BodyLimit caps request bodies at limit bytes.
// A declared Content-Length over the cap is rejected up front;
// chunked bodies are cut off while decoding.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			slog.Warn("request body too large", "content_length", c.Request.ContentLength, "remote_addr", c.ClientIP())
			apperr.Abort(c, apperr.New(apperr.KindTooLarge, "request body too large"))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// SecurityHeaders sets the usual hardening headers on every response.
// HSTS is only emitted for TLS requests.
func SecurityHeaders(development bool) gin.HandlerFunc {
	return secure.New(secure.Config{
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		IENoOpen:              true,
		IsDevelopment:         development,
	})
}

// Recovery turns a panic into a logged 500 with the generic error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
		)
		apperr.Abort(c, errInternal)
	})
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	apperr.Respond(c, errEndpointNotFound)
}

// MethodNotAllowed answers known paths requested with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	apperr.Respond(c, errMethodNotAllowed)
}
