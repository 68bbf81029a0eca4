package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleAfter is how long a client's bucket is kept once it stops sending.
const idleAfter = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows each client IP up to limit requests per window, refilled
// evenly. A non-positive limit or window disables the middleware.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	every := rate.Every(window / time.Duration(limit))

	var (
		mu        sync.Mutex
		clients   = map[string]*clientBucket{}
		lastSweep = time.Now()
	)
	allow := func(ip string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if now.Sub(lastSweep) > idleAfter {
			for k, b := range clients {
				if now.Sub(b.lastSeen) > idleAfter {
					delete(clients, k)
				}
			}
			lastSweep = now
		}
		b, ok := clients[ip]
		if !ok {
			b = &clientBucket{limiter: rate.NewLimiter(every, limit)}
			clients[ip] = b
		}
		b.lastSeen = now
		return b.limiter.AllowN(now, 1)
	}

	return func(c *gin.Context) {
		if !allow(c.ClientIP(), time.Now()) {
			Error(c, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}
		c.Next()
	}
}
