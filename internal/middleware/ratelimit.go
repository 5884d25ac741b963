package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket. Stale clients are pruned
// lazily so no background goroutine is needed.
func RateLimit(requestsPerMin, burst int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		clients   = make(map[string]*rateLimitClient)
		nextPrune = time.Now().Add(10 * time.Minute)
	)
	limit := rate.Limit(float64(requestsPerMin) / 60.0)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.After(nextPrune) {
			for key, client := range clients {
				if now.Sub(client.lastSeen) > 10*time.Minute {
					delete(clients, key)
				}
			}
			nextPrune = now.Add(10 * time.Minute)
		}

		client, ok := clients[ip]
		if !ok {
			client = &rateLimitClient{limiter: rate.NewLimiter(limit, burst)}
			clients[ip] = client
		}
		client.lastSeen = now
		mu.Unlock()

		if !client.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
