package serverutils

import (
	"context"
	"fmt"
	"time"

	"cleaning-booking-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter increments a windowed counter and returns the new value.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimit allows limit requests per client IP per window. Counter errors
// let the request through.
func RateLimit(counter Counter, name string, limit int, window time.Duration, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return ctx.Next()
		}
		if window < time.Second {
			window = time.Second
		}

		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", name, ctx.IP(), bucket)

		count, err := counter.Incr(ctx.UserContext(), key, window)
		if err != nil {
			log.Warn("RATE_LIMIT", "Counter unavailable, allowing request", map[string]interface{}{
				"limiter": name,
				"error":   err.Error(),
			})
			return ctx.Next()
		}
		if count > int64(limit) {
			ctx.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests"))
		}
		return ctx.Next()
	}
}
