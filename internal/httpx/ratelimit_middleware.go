package httpx

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

const defaultMaxClients = 10000

// RateLimiter keeps one token bucket per client. Buckets of the least recently
// seen clients are evicted once maxClients is reached.
type RateLimiter struct {
	clients *lru.Cache
	rate    rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst, maxClients int) (*RateLimiter, error) {
	if maxClients < 1 {
		maxClients = defaultMaxClients
	}
	clients, err := lru.New(maxClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{clients: clients, rate: rate.Limit(rps), burst: burst}, nil
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.clients.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	// A concurrent first request from the same client may win; use its bucket.
	if prev, ok, _ := rl.clients.PeekOrAdd(key, l); ok {
		return prev.(*rate.Limiter)
	}
	return l
}

// Middleware rejects requests over the client's budget with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.limiter(clientKey(r)).Reserve()
		if !res.OK() {
			JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the first X-Forwarded-For hop, or the remote host without its port.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
