package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter : Token Bucket par IP, protège les routes d'authentification
// (force brute sur les mots de passe, abus d'envoi d'OTP)
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    int           // Nombre max de requêtes
	window  time.Duration // Fenêtre temporelle
}

type client struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*client),
		rate:    maxRequests,
		window:  window,
	}

	// Nettoyage périodique des entrées expirées
	go rl.cleanup()

	return rl
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, cl := range rl.clients {
			if time.Since(cl.lastReset) > rl.window*2 {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow décrémente un jeton pour cette IP ; false quand le seau est vide
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.clients[ip]
	if !exists || time.Since(cl.lastReset) > rl.window {
		cl = &client{
			tokens:    rl.rate,
			lastReset: time.Now(),
		}
		rl.clients[ip] = cl
	}

	if cl.tokens <= 0 {
		return false
	}
	cl.tokens--
	return true
}

// RateLimitMiddleware crée un middleware Gin de rate limiting par IP
func RateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	limiter := newRateLimiter(maxRequests, window)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": limiter.window.Seconds(),
			})
			return
		}
		c.Next()
	}
}
