package ratelimit

import (
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int           `yaml:"burst_size" json:"burst_size"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
	BlockDuration     time.Duration `yaml:"block_duration" json:"block_duration"`
	MaxViolations     int           `yaml:"max_violations" json:"max_violations"`
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 600,
		BurstSize:         60,
		CleanupInterval:   5 * time.Minute,
		BlockDuration:     10 * time.Minute,
		MaxViolations:     5,
	}
}

// RateLimiter implements per-client rate limiting with abuse prevention
type RateLimiter struct {
	config     *RateLimitConfig
	limiters   map[string]*rate.Limiter
	violations map[string]*ViolationTracker
	blocked    map[string]time.Time
	mutex      sync.RWMutex
	stopChan   chan struct{}
}

// ViolationTracker tracks rate limit violations for abuse prevention
type ViolationTracker struct {
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// RateLimitInfo describes the outcome of a rate limit check
type RateLimitInfo struct {
	Allowed      bool      `json:"allowed"`
	Remaining    int       `json:"remaining"`
	ResetTime    time.Time `json:"reset_time"`
	Blocked      bool      `json:"blocked"`
	BlockedUntil time.Time `json:"blocked_until,omitempty"`
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rl := &RateLimiter{
		config:     config,
		limiters:   make(map[string]*rate.Limiter),
		violations: make(map[string]*ViolationTracker),
		blocked:    make(map[string]time.Time),
		stopChan:   make(chan struct{}),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) (bool, *RateLimitInfo) {
	if !rl.config.Enabled {
		return true, &RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	// Check if key is currently blocked
	if blockedUntil, isBlocked := rl.blocked[key]; isBlocked {
		if time.Now().Before(blockedUntil) {
			return false, &RateLimitInfo{
				Allowed:      false,
				Remaining:    0,
				ResetTime:    blockedUntil,
				Blocked:      true,
				BlockedUntil: blockedUntil,
			}
		}
		// Block has expired, remove it
		delete(rl.blocked, key)
	}

	limiter := rl.getLimiter(key)
	allowed := limiter.Allow()

	info := &RateLimitInfo{
		Allowed:   allowed,
		Remaining: int(limiter.Tokens()),
		ResetTime: time.Now().Add(time.Minute),
	}

	if !allowed {
		rl.trackViolation(key)

		if rl.shouldBlock(key) {
			blockUntil := time.Now().Add(rl.config.BlockDuration)
			rl.blocked[key] = blockUntil
			info.Blocked = true
			info.BlockedUntil = blockUntil
		}
	}

	return allowed, info
}

// AllowIP checks if a request is allowed for the given IP address
func (rl *RateLimiter) AllowIP(ip string) (bool, *RateLimitInfo) {
	if parsedIP := net.ParseIP(ip); parsedIP != nil {
		ip = parsedIP.String()
	}

	return rl.Allow(fmt.Sprintf("ip:%s", ip))
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters[key]
	if !exists {
		rps := rate.Limit(float64(rl.config.RequestsPerMinute) / 60.0)
		limiter = rate.NewLimiter(rps, rl.config.BurstSize)
		rl.limiters[key] = limiter
	}
	return limiter
}

// trackViolation tracks a rate limit violation
func (rl *RateLimiter) trackViolation(key string) {
	now := time.Now()

	if tracker, exists := rl.violations[key]; exists {
		tracker.Count++
		tracker.LastSeen = now
	} else {
		rl.violations[key] = &ViolationTracker{
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
}

// shouldBlock determines if a key should be temporarily blocked
func (rl *RateLimiter) shouldBlock(key string) bool {
	tracker, exists := rl.violations[key]
	if !exists {
		return false
	}

	if tracker.Count >= rl.config.MaxViolations {
		return time.Since(tracker.FirstSeen) <= rl.config.BlockDuration
	}

	return false
}

// UnblockKey removes a key from the blocked list
func (rl *RateLimiter) UnblockKey(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if _, exists := rl.blocked[key]; exists {
		delete(rl.blocked, key)
		delete(rl.violations, key)
		return true
	}
	return false
}

// Stats holds rate limiter operating counts
type Stats struct {
	ActiveLimiters int `json:"active_limiters"`
	Violations     int `json:"violations"`
	Blocked        int `json:"blocked"`
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	return Stats{
		ActiveLimiters: len(rl.limiters),
		Violations:     len(rl.violations),
		Blocked:        len(rl.blocked),
	}
}

// cleanupRoutine periodically cleans up old limiters and violations
func (rl *RateLimiter) cleanupRoutine() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

// cleanup removes stale violations and expired blocks
func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	for key, blockedUntil := range rl.blocked {
		if now.After(blockedUntil) {
			delete(rl.blocked, key)
		}
	}

	for key, tracker := range rl.violations {
		if now.Sub(tracker.LastSeen) > rl.config.BlockDuration {
			delete(rl.violations, key)
		}
	}
}

// Stop stops the cleanup routine
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}
