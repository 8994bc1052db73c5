package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"github.com/dmitrijs2005/guestgallery/internal/server/auth"
	"github.com/dmitrijs2005/guestgallery/internal/server/metrics"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ctxKeyRequestID = "request_id"
	ctxKeySession   = "guest_session"

	passwordPath = "/password"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(common.RequestIDHeaderName))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

// accessLogMiddleware traces and logs every request and records its metrics.
func accessLogMiddleware(l logging.Logger, observer metrics.Observer) gin.HandlerFunc {
	tracer := otel.Tracer("github.com/dmitrijs2005/guestgallery/internal/server/http")
	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.Request.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		observer.RecordHTTPRequest(c.Request.Method, route, status, latency)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxKeyRequestID),
		}
		switch {
		case status >= http.StatusInternalServerError:
			l.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			l.Warn(ctx, "request", args...)
		default:
			l.Info(ctx, "request", args...)
		}
	}
}

// gateMiddleware sends visitors without a valid site marker to the password
// page. The password page and the API are always reachable.
func gateMiddleware(gate GateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == passwordPath || isAPIPath(p) {
			c.Next()
			return
		}

		value, err := c.Cookie(common.SiteGateCookieName)
		if !gate.Allow(err == nil, value) {
			c.Redirect(http.StatusFound, passwordPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// sessionMiddleware attaches the guest session, if any, to the request. The
// token comes from the Authorization bearer header or the guest-session
// cookie. Requests without a valid token continue anonymously.
func sessionMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(common.GuestSessionCookieName)
		}
		if token != "" {
			if email, err := auth.ParseSessionToken(token, secret); err == nil {
				c.Set(ctxKeySession, &models.Session{Email: email})
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func sessionFrom(c *gin.Context) *models.Session {
	if v, ok := c.Get(ctxKeySession); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}
