package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/jigsaw-puzzle-back/internal/response"
)

// RateLimiter allows at most limit requests per client in each fixed window.
// The window starts at a client's first request.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	length  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	used  int
	until time.Time
}

// NewRateLimiter creates a RateLimiter and starts a goroutine that drops
// finished windows. Call Stop to end it.
func NewRateLimiter(limit int, length time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		length:  length,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.run()
	return rl
}

// Stop ends the sweeping goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) run() {
	ticker := time.NewTicker(rl.length)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if now.After(w.until) {
			delete(rl.windows, key)
		}
	}
}

// take counts one request for key. When the window is full it returns false
// and how long until the window ends.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.until) {
		rl.windows[key] = &window{used: 1, until: now.Add(rl.length)}
		return true, 0
	}
	if w.used >= rl.limit {
		return false, w.until.Sub(now)
	}
	w.used++
	return true, 0
}

// Allow reports whether a request from key fits in its current window.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// Middleware limits by client IP and answers 429 with Retry-After when over.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, wait := rl.take(c.RealIP())
			if ok {
				return next(c)
			}
			seconds := int(math.Ceil(wait.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			return response.ErrorWithCode(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"リクエストが多すぎます。しばらく待ってから再試行してください。")
		}
	}
}
