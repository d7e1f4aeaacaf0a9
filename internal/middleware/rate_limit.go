package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	AssistantMaxCalls   = 10
	APIMaxRequests      = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	LoginCooldown     = 15 * time.Minute
	RegisterCooldown  = 30 * time.Minute
	AssistantCooldown = 1 * time.Minute
	APICooldown       = 1 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if !allow(c, "login_attempts:"+input.Email, LoginMaxAttempts, LoginCooldown) {
			return
		}
		c.Next()
	}
}

// RegisterRateLimit limite les créations de compte par IP
func RegisterRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c, "register_attempts:"+c.ClientIP(), RegisterMaxAttempts, RegisterCooldown) {
			return
		}
		c.Next()
	}
}

// AssistantRateLimit limite les appels à l'assistant (API payante)
func AssistantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = c.ClientIP()
		}
		if !allow(c, "assistant_calls:"+key, AssistantMaxCalls, AssistantCooldown) {
			return
		}
		c.Next()
	}
}

// APIRateLimit : limite générale par IP
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c, "api_requests:"+c.ClientIP(), APIMaxRequests, APICooldown) {
			return
		}
		c.Next()
	}
}

// allow incrémente un compteur Redis avec expiration et bloque au-delà du max
func allow(c *gin.Context, key string, max int, cooldown time.Duration) bool {
	ctx := context.Background()

	count, err := database.Redis.Incr(ctx, key).Result()
	if err != nil {
		// Redis down : on ne bloque pas le trafic pour autant
		return true
	}
	if count == 1 {
		database.Redis.Expire(ctx, key, cooldown)
	}

	if count > int64(max) {
		ttl, _ := database.Redis.TTL(ctx, key).Result()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Trop de requêtes, réessayez plus tard",
			"retry_after": fmt.Sprintf("%.0fs", ttl.Seconds()),
		})
		c.Abort()
		return false
	}
	return true
}
