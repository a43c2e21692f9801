package middleware

import (
	"strconv"
	"sync"
	"time"

	"everlove/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterPool tracks one token bucket per client IP. Idle entries are
// dropped so the map stays bounded.
type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	window  time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(requests int, window time.Duration) *limiterPool {
	if requests < 1 {
		requests = 1
	}
	p := &limiterPool{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
	}
	go p.evictLoop()
	return p
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	cl, ok := p.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	p.mu.Unlock()

	return cl.limiter.Allow()
}

func (p *limiterPool) evictLoop() {
	for {
		time.Sleep(5 * time.Minute)
		p.mu.Lock()
		for ip, cl := range p.clients {
			if time.Since(cl.lastSeen) > 10*time.Minute {
				delete(p.clients, ip)
			}
		}
		p.mu.Unlock()
	}
}

func (p *limiterPool) handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if p.allow(ip) {
			return c.Next()
		}

		utils.Log.Warn("Rate limit exceeded for %s on %s %s", ip, c.Method(), c.Path())

		c.Set("Retry-After", strconv.Itoa(int(p.window.Seconds())))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests. Please slow down.",
		})
	}
}

// RateLimiter limits each client IP to `requests` per `window` across
// all routes.
func RateLimiter(requests int, window time.Duration) fiber.Handler {
	return newLimiterPool(requests, window).handler()
}

// WriteRateLimiter is a stricter per-IP limit for mutating endpoints,
// sized at a quarter of the global allowance.
func WriteRateLimiter(requests int, window time.Duration) fiber.Handler {
	writes := requests / 4
	if writes < 1 {
		writes = 1
	}
	return newLimiterPool(writes, window).handler()
}
