package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"go.uber.org/zap"
)

// bucket is a token bucket for one username
type bucket struct {
	tokens     int
	lastRefill time.Time
}

// LoginLimiter throttles sign-in attempts with one token bucket per username
type LoginLimiter struct {
	maxTokens  int
	refillRate time.Duration
	buckets    map[string]*bucket
	mutex      sync.Mutex
	logger     *logging.SafeLogger
	now        func() time.Time
}

// NewLoginLimiter allows attemptsPerMinute attempts per username, refilled
// evenly over the minute. A non-positive value disables throttling.
func NewLoginLimiter(attemptsPerMinute int, logger *logging.SafeLogger) *LoginLimiter {
	l := &LoginLimiter{
		maxTokens: attemptsPerMinute,
		buckets:   make(map[string]*bucket),
		logger:    logger,
		now:       time.Now,
	}
	if attemptsPerMinute > 0 {
		l.refillRate = time.Minute / time.Duration(attemptsPerMinute)
	}
	return l
}

func limiterKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Allow takes one token for username
func (l *LoginLimiter) Allow(username string) bool {
	if l == nil || l.maxTokens <= 0 {
		return true
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	key := limiterKey(username)
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.maxTokens, lastRefill: now}
		l.buckets[key] = b
	}

	// Refill tokens based on time elapsed
	if tokensToAdd := int(now.Sub(b.lastRefill) / l.refillRate); tokensToAdd > 0 {
		b.tokens += tokensToAdd
		if b.tokens > l.maxTokens {
			b.tokens = l.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	l.logger.Warn("login attempts throttled",
		zap.String("username", key),
		zap.Int("max_tokens", l.maxTokens))
	return false
}

// Reset forgets the bucket of username, e.g. after a successful sign-in
func (l *LoginLimiter) Reset(username string) {
	if l == nil {
		return
	}
	l.mutex.Lock()
	delete(l.buckets, limiterKey(username))
	l.mutex.Unlock()
}

// CleanupOldEntries removes buckets untouched for longer than olderThan
func (l *LoginLimiter) CleanupOldEntries(olderThan time.Duration) int {
	if l == nil {
		return 0
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	cutoff := l.now().Add(-olderThan)
	removed := 0
	for key, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug("cleaned up login limiter entries", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of tracked usernames
func (l *LoginLimiter) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.buckets)
}

// StartCleanup prunes idle buckets every interval until stop is closed
func (l *LoginLimiter) StartCleanup(interval, olderThan time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.CleanupOldEntries(olderThan)
			case <-stop:
				return
			}
		}
	}()
}
