package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/infrastructure/service/logger"
)

// rateLimitService implements outbound.RateLimitService on Redis counters
type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// RateLimitConfig configuration for rate limiting
type RateLimitConfig struct {
	Enabled           bool
	RedisURL          string
	IPAttempts        int
	IPWindow          time.Duration
	LifecycleAttempts int
	LifecycleWindow   time.Duration
	BlockDuration     time.Duration
}

// NewRateLimitService connects to Redis, or returns a service that never
// limits when rate limiting is disabled.
func NewRateLimitService(config RateLimitConfig, log *logrus.Logger) (outbound.RateLimitService, error) {
	if !config.Enabled {
		log.Info("Rate limiting disabled")
		return NoopRateLimitService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return NewRedisRateLimitService(context.Background(), redis.NewClient(opt), config, log)
}

// NewRedisRateLimitService wraps an existing client after checking it responds.
func NewRedisRateLimitService(ctx context.Context, client *redis.Client, config RateLimitConfig, log *logrus.Logger) (outbound.RateLimitService, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithFields(logrus.Fields{
		"ip_attempts":        config.IPAttempts,
		"ip_window":          config.IPWindow,
		"lifecycle_attempts": config.LifecycleAttempts,
		"lifecycle_window":   config.LifecycleWindow,
		"block_duration":     config.BlockDuration,
	}).Info("Rate limiting service initialized")

	return &rateLimitService{
		redisClient: client,
		logger:      log,
	}, nil
}

func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	currentCount, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	isUnderLimit := currentCount < limit

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":         key,
		"current":     currentCount,
		"limit":       limit,
		"under_limit": isUnderLimit,
	}).Debug("Rate limit check")

	return isUnderLimit, nil
}

// Increment bumps the counter for key; the window restarts on every hit.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.redisClient.Pipeline()
	incrCmd := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":    key,
		"count":  incrCmd.Val(),
		"window": window,
	}).Debug("Rate limit incremented")

	return nil
}

func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := fmt.Sprintf("blocked:%s", key)

	blockData := map[string]interface{}{
		"reason":         reason,
		"blocked_at":     time.Now().Unix(),
		"duration":       duration.Seconds(),
		"correlation_id": logger.CorrelationIDFromContext(ctx),
	}

	pipeline := s.redisClient.Pipeline()
	pipeline.HSet(ctx, blockKey, blockData)
	pipeline.Expire(ctx, blockKey, duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")

	return nil
}

func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, fmt.Sprintf("blocked:%s", key)).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

func (s *rateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to get attempts count")
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

// NoopRateLimitService never limits anything.
type NoopRateLimitService struct{}

func (NoopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (NoopRateLimitService) Increment(context.Context, string, time.Duration) error { return nil }

func (NoopRateLimitService) Block(context.Context, string, time.Duration, string) error { return nil }

func (NoopRateLimitService) IsBlocked(context.Context, string) (bool, error) { return false, nil }

func (NoopRateLimitService) GetAttempts(context.Context, string) (int, error) { return 0, nil }
