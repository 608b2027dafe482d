// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type limiterEntry struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter is a per-IP sliding-window limiter. The public order form
// and the admin login each get their own instance.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration

	mu      sync.RWMutex
	clients map[string]*limiterEntry
	stopCh  chan struct{}
}

// NewRateLimiter allows limit requests per window for each client IP and
// starts a janitor goroutine that drops idle clients. Call Stop on shutdown.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewNamedRateLimiter("", limit, window)
}

// NewNamedRateLimiter is NewRateLimiter with a name used in log lines.
func NewNamedRateLimiter(name string, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		clients: make(map[string]*limiterEntry),
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup(time.Now())
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop ends the janitor goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) entry(key string) *limiterEntry {
	rl.mu.RLock()
	e, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return e
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if e, ok = rl.clients[key]; !ok {
		e = &limiterEntry{}
		rl.clients[key] = e
	}
	return e
}

// take records a hit for key at now. When the window is full it reports
// how long until the oldest hit leaves it.
func (rl *RateLimiter) take(key string, now time.Time) (bool, time.Duration) {
	e := rl.entry(key)
	cutoff := now.Add(-rl.window)

	e.mu.Lock()
	defer e.mu.Unlock()

	live := e.hits[:0]
	for _, ts := range e.hits {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	e.hits = live

	if len(e.hits) >= rl.limit {
		return false, e.hits[0].Sub(cutoff)
	}
	e.hits = append(e.hits, now)
	return true, 0
}

// cleanup drops clients whose last hit left the window before now.
func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, e := range rl.clients {
		e.mu.Lock()
		idle := len(e.hits) == 0 || !e.hits[len(e.hits)-1].After(cutoff)
		e.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, wait := rl.take(ip, time.Now())
		if !ok {
			slog.Warn("rate limit exceeded", "limiter", rl.name, "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			fail(w, r, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the leftmost X-Forwarded-For address, then X-Real-IP,
// then the connection's remote address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
