package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UploadRateLimit limits the number of media uploads per admin and day.
// The counter resets daily at midnight for predictable behavior.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		if !isUploadEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		// Admin ID is set by the Auth middleware
		userIDInterface, exists := c.Get("userID")
		if !exists {
			c.Next()
			return
		}

		adminID, ok := userIDInterface.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		today := time.Now().Format("2006-01-02")
		key := fmt.Sprintf("upload_limit:%s:%s", adminID.String(), today)

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			// First upload today, expire at midnight
			now := time.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			ttl := midnight.Sub(now)
			if err := redisClient.Set(ctx, key, 1, ttl).Err(); err != nil {
				// Redis error - don't block upload
				c.Next()
				return
			}
		} else if err != nil {
			// Redis error - don't block upload
			c.Next()
			return
		} else if count >= cfg.UploadMaxPerDay {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               "upload_rate_limit_exceeded",
				"message":             "Too many uploads today. Please try again tomorrow.",
				"retry_after_hours":   int(ttl.Hours()),
				"uploads_today":       count,
				"max_uploads_per_day": cfg.UploadMaxPerDay,
			})
			c.Abort()
			return
		} else {
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}

// isUploadEndpoint checks if the path is a media upload endpoint
func isUploadEndpoint(path string) bool {
	if strings.HasSuffix(path, "/media") || strings.HasSuffix(path, "/partner-logos") {
		return true
	}
	if strings.HasSuffix(path, "/photo") || strings.HasSuffix(path, "/logo") {
		return true
	}
	return false
}
