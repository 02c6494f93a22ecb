package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	Rate  float64 // tokens per second per client
	Burst int
	// Skip lists exact paths that are never limited.
	Skip []string
	// IdleTTL drops limiters for clients not seen for this long.
	IdleTTL time.Duration
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiters keeps one token bucket per key.
type Limiters struct {
	mu      sync.Mutex
	m       map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func NewLimiters(perSecond float64, burst int, idleTTL time.Duration) *Limiters {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Limiters{
		m:       make(map[string]*clientLimiter),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow consumes one token for key.
func (l *Limiters) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	cl, ok := l.m[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(l.rate, l.burst)}
		l.m[key] = cl
	}
	cl.seen = now
	if len(l.m) > 1024 {
		l.sweepLocked(now)
	}
	l.mu.Unlock()
	return cl.lim.AllowN(now, 1)
}

func (l *Limiters) sweepLocked(now time.Time) {
	for k, cl := range l.m {
		if now.Sub(cl.seen) > l.idleTTL {
			delete(l.m, k)
		}
	}
}

// RateLimit answers 429 once a client IP runs out of tokens.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiters := NewLimiters(cfg.Rate, cfg.Burst, cfg.IdleTTL)
	skip := make(map[string]struct{}, len(cfg.Skip))
	for _, p := range cfg.Skip {
		skip[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return next(c)
			}
			if !limiters.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
