package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/metrics"
)

// RateLimiter ограничивает частоту запросов фиксированным окном в Redis.
// Без клиента Redis ограничение отключено.
type RateLimiter struct {
	client *redis.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter создаёт RateLimiter; client может быть nil
func NewRateLimiter(client *redis.Client, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{client: client, log: log, now: time.Now}
}

// Enabled сообщает, подключён ли Redis
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.client != nil
}

// subjectKey — пользователь, если он уже известен, иначе IP
func subjectKey(c fiber.Ctx) string {
	if user := CurrentUser(c); user != nil {
		return "user:" + user.ID.String()
	}
	return "ip:" + c.IP()
}

// CheckAndIncrement увеличивает счётчик окна и сообщает, можно ли выполнить запрос.
// Возвращает (allowed, remaining, resetAt).
func (rl *RateLimiter) CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time, error) {
	now := rl.now()
	bucket := now.UnixNano() / int64(window)
	windowKey := fmt.Sprintf("%s:%d", key, bucket)
	resetAt := time.Unix(0, (bucket+1)*int64(window))

	pipe := rl.client.TxPipeline()
	countCmd := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, limit, resetAt, err
	}

	count := int(countCmd.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= limit, remaining, resetAt, nil
}

// Allow проверяет лимит для текущего запроса: не более limit запросов за window
// от одного пользователя (или IP) к конечной точке name. При превышении
// возвращает ошибку 429.
func (rl *RateLimiter) Allow(c fiber.Ctx, name string, limit int, window time.Duration) error {
	if !rl.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := "ratelimit:" + name + ":" + subjectKey(c)
	allowed, remaining, resetAt, err := rl.CheckAndIncrement(ctx, key, limit, window)
	if err != nil {
		// Недоступность Redis не должна останавливать API
		rl.log.Warn().Err(err).Str("endpoint", name).Msg("ошибка проверки лимита запросов")
		return nil
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

	if !allowed {
		metrics.RateLimitHits.WithLabelValues(name).Inc()
		c.Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
	}
	return nil
}
