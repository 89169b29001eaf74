// Package ratelimit bounds repeated requests with per-key sliding windows.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key inside a fixed window. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	hits    int
	resetAt time.Time
}

// New returns a limiter allowing limit hits per key per window.
func New(limit int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go l.sweep()
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{hits: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.hits >= l.limit {
		return false
	}
	b.hits++
	return true
}

// Reset forgets the hits recorded for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep drops expired buckets so idle keys do not accumulate.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(2 * l.window)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// SignInLimiter throttles sign-in attempts on two axes: per client IP, so a
// single host cannot hammer the form, and per account email, so a guess run
// spread over many hosts still stalls on one account.
type SignInLimiter struct {
	byIP      *Limiter
	byAccount *Limiter
}

// NewSignInLimiter returns a sign-in limiter with the default windows:
// 10 attempts per IP per minute, 5 attempts per account per five minutes.
func NewSignInLimiter() *SignInLimiter {
	return &SignInLimiter{
		byIP:      New(10, time.Minute),
		byAccount: New(5, 5*time.Minute),
	}
}

// Allow records one attempt and reports whether it may proceed. When refused,
// msg is suitable for showing to the user.
func (sl *SignInLimiter) Allow(r *http.Request, email string) (ok bool, msg string) {
	if !sl.byIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Try again in a minute."
	}
	if key := accountKey(email); key != "" && !sl.byAccount.Allow(key) {
		return false, "Too many sign-in attempts for this account. Try again in a few minutes."
	}
	return true, ""
}

// Reset clears both windows after a successful sign-in.
func (sl *SignInLimiter) Reset(r *http.Request, email string) {
	sl.byIP.Reset(ClientIP(r))
	if key := accountKey(email); key != "" {
		sl.byAccount.Reset(key)
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClientIP returns the requesting client's IP, honoring the forwarding
// headers set by a reverse proxy before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client.
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
