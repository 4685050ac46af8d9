package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/metrics"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"

	identityKey = "folio.identity"
)

// requestContext tags the request context with a request id for logging
// and writes one access log line per request.
func requestContext(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		ctx := logging.ContextWithFields(c.Request.Context(), map[string]any{"request_id": requestID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.WithContext(ctx).Debug("http.request.completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

// requireIdentity rejects requests without a verifiable bearer credential.
// A nil authenticator rejects everything.
func requireIdentity(authenticator interfaces.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if authenticator == nil || header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		identity, err := authenticator.Authenticate(c.Request.Context(), header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(logging.ContextWithFields(c.Request.Context(), map[string]any{
			"subject": identity.Subject,
		}))
		c.Next()
	}
}

func identityFrom(c *gin.Context) (interfaces.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return interfaces.Identity{}, false
	}
	identity, ok := v.(interfaces.Identity)
	return identity, ok
}

// rateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by subject, anonymous ones by client IP.
type rateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // map[string]*rate.Limiter
	metrics  *metrics.Collectors
}

func newRateLimiter(rps float64, burst int, collectors *metrics.Collectors) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{rps: rate.Limit(rps), burst: burst, metrics: collectors}
}

func (l *rateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter)
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if identity, ok := identityFrom(c); ok && identity.Subject != "" {
			key = "sub:" + identity.Subject
		}
		if key == "" {
			ip := c.ClientIP()
			if ip == "" {
				ip = "unknown"
			}
			key = "ip:" + ip
		}

		allowed := l.limiter(key).Allow()
		if l.metrics != nil {
			l.metrics.RateLimited(metrics.LimiterMemory, allowed)
		}
		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
