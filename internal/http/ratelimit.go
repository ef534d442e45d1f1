package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Mutating requests allowed per client IP per window.
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute

	// Idle clients are dropped from the table after this long.
	rateLimitStaleAfter = 10 * time.Minute
)

// rateLimiter counts mutating requests per client IP over a fixed window.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type rateWindow struct {
	startedAt time.Time
	count     int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows:     make(map[string]*rateWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// allow records one request from clientIP and reports whether it fits in
// the current window.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.startedAt) > rateLimitWindow {
		rl.windows[clientIP] = &rateWindow{startedAt: now, count: 1}
		return true
	}

	w.count++
	if w.count > rateLimitRequests {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) dropStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitStaleAfter)
	for ip, w := range rl.windows {
		if w.startedAt.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
