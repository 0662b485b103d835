package middleware

import (
	"net/http"
	"sync"
	"time"

	"clinipos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Rate limiting ─────────────────────────────────────────────────────────────
// Fixed-window per-IP counters kept in process memory. Two instances exist:
// a tight limiter on the login endpoint and a generous one on the whole API.
// Windows roll per IP, so a burst at a window edge can see up to 2x the
// nominal limit; acceptable for abuse protection.

type ipWindow struct {
	mu     sync.Mutex
	count  int
	resets time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	windows map[string]*ipWindow
	limit   int
	window  time.Duration
	message string
}

func newIPLimiter(limit int, window time.Duration, message string) *ipLimiter {
	l := &ipLimiter{
		windows: make(map[string]*ipWindow),
		limit:   limit,
		window:  window,
		message: message,
	}
	go l.purgeLoop()
	return l
}

// allow increments the caller's window and reports whether it is still
// under the limit, plus when the window resets.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	w, ok := l.windows[ip]
	if !ok {
		w = &ipWindow{}
		l.windows[ip] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.After(w.resets) {
		w.count = 0
		w.resets = now.Add(l.window)
	}
	w.count++
	return w.count <= l.limit, w.resets
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, resets := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", resets.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.Response{
				ErrorKind: "rate_limited", Message: l.message,
			})
			return
		}
		c.Next()
	}
}

// purgeLoop drops windows for IPs that stopped calling, so the maps do not
// grow without bound.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := 0

		l.mu.Lock()
		for ip, w := range l.windows {
			w.mu.Lock()
			expired := now.After(w.resets)
			w.mu.Unlock()
			if expired {
				delete(l.windows, ip)
				purged++
			}
		}
		remaining := len(l.windows)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter windows purged")
		}
	}
}

var loginLimiter = newIPLimiter(20, time.Minute,
	"too many login attempts, retry in one minute")

// LoginRateLimiter caps login attempts at 20 per minute per IP to slow
// credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.handler()
}

// RateLimiter is the API-wide per-IP limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window, "too many requests, retry shortly").handler()
}
