package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/infrastructure/http/response"
	"github.com/complyance/governance/infrastructure/service/logger"
)

// RateLimitPolicy sets the budgets per client IP. Lifecycle covers the
// irreversible or state-changing user transitions.
type RateLimitPolicy struct {
	GeneralLimit    int
	GeneralWindow   time.Duration
	LifecycleLimit  int
	LifecycleWindow time.Duration
	BlockDuration   time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService outbound.RateLimitService
	policy           RateLimitPolicy
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService outbound.RateLimitService, policy RateLimitPolicy, logger logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		policy:           policy,
		logger:           logger,
	}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := getClientIP(r)

		var (
			key    string
			limit  int
			window time.Duration
		)
		if isLifecycleRequest(r) {
			key = fmt.Sprintf("lifecycle:ip:%s", clientIP)
			limit = m.policy.LifecycleLimit
			window = m.policy.LifecycleWindow
		} else {
			key = fmt.Sprintf("general:ip:%s", clientIP)
			limit = m.policy.GeneralLimit
			window = m.policy.GeneralWindow
		}

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			// fail open
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
		}
		if isBlocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"key":       key,
				"userAgent": r.UserAgent(),
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.policy.BlockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, limit, window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
			allowed = true
		}
		if !allowed {
			if err := m.rateLimitService.Block(ctx, key, m.policy.BlockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{
					"ip":  clientIP,
					"key": key,
				})
			}
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"key":       key,
				"userAgent": r.UserAgent(),
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.policy.BlockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, window); err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
		}

		next.ServeHTTP(w, r)
	})
}

// isLifecycleRequest matches user deletion, restore and purge.
func isLifecycleRequest(r *http.Request) bool {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if r.Method == http.MethodPost && (strings.HasSuffix(path, "/restore") || strings.HasSuffix(path, "/purge")) {
		return true
	}
	return r.Method == http.MethodDelete && strings.Contains(path, "/users/") && !strings.Contains(path, "/preferences")
}

// getClientIP extracts client IP from request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
