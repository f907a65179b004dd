package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Rate limit windows applied per client IP.
const (
	DailyLimit  = 200
	HourlyLimit = 50
)

type rateWindow struct {
	name   string
	limit  int64
	period time.Duration
}

var rateWindows = []rateWindow{
	{name: "day", limit: DailyLimit, period: 24 * time.Hour},
	{name: "hour", limit: HourlyLimit, period: time.Hour},
}

// RateLimit enforces per-IP request quotas backed by Redis counters. When
// disabled (local development) or when Redis is unreachable it lets the
// request through.
func RateLimit(client *redis.Client, disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if disabled || client == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		for _, w := range rateWindows {
			key := fmt.Sprintf("ratelimit:%s:%s", w.name, ip)

			pipe := client.Pipeline()
			incr := pipe.Incr(c.Request.Context(), key)
			pipe.Expire(c.Request.Context(), key, w.period)
			if _, err := pipe.Exec(c.Request.Context()); err != nil {
				log.Printf("[RateLimit] Redis error, allowing request: %v", err)
				c.Next()
				return
			}

			if incr.Val() > w.limit {
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error": fmt.Sprintf("Rate limit exceeded: %d per %s", w.limit, w.name),
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
