// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/projectboard/internal/core"
)

const (
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = time.Minute
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
	Logger  *slog.Logger
}

// RateLimiter counts requests in Redis so every replica shares one
// budget per key. While Redis is unreachable it keeps limiting with
// buckets held in this process.
type RateLimiter struct {
	shared   *redis_rate.Limiter
	local    *localBuckets
	config   RateLimitConfig
	degraded atomic.Bool
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateLimiter{
		shared: redis_rate.NewLimiter(rdb),
		local:  newLocalBuckets(time.Now),
		config: cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		res, err := rl.shared.Allow(r.Context(), key, rl.config.Limit)
		if err != nil {
			if rl.degraded.CompareAndSwap(false, true) {
				rl.config.Logger.WarnContext(r.Context(), "rate limiter switched to local buckets",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
			}
			res = rl.local.take(key, rl.config.Limit)
		} else if rl.degraded.CompareAndSwap(true, false) {
			rl.config.Logger.InfoContext(r.Context(), "rate limiter back on redis")
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			rl.config.Logger.DebugContext(r.Context(), "rate limited",
				"key", key,
				"user_id", GetUserID(r.Context()),
			)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return "ratelimit:ip:" + strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	return "ratelimit:ip:" + ip
}

// KeyByActor buckets signed-in requests per actor and falls back to the
// client IP when no actor is in context.
func KeyByActor(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "ratelimit:actor:" + userID
	}
	return KeyByIP(r)
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(math.Ceil(res.RetryAfter.Seconds())), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is a token bucket per key guarded by one mutex. Counts
// are per process, so N replicas admit up to N times the limit while
// Redis is down. Idle buckets are swept on the request path.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newLocalBuckets(now func() time.Time) *localBuckets {
	return &localBuckets{
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
		now:       now,
	}
}

func (b *localBuckets) take(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	now := b.now()

	b.mu.Lock()
	if now.Sub(b.lastSweep) >= sweepEvery {
		b.sweepLocked(now.Add(-bucketIdleTTL))
		b.lastSweep = now
	}

	bk, ok := b.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		b.buckets[key] = bk
	}
	bk.lastSeen = now
	allowed := bk.limiter.AllowN(now, 1)
	tokens := bk.limiter.TokensAt(now)
	b.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(tokens), 0),
		RetryAfter: -1,
		ResetAfter: secondsToDuration((float64(limit.Burst) - tokens) / perSecond),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}

	return res
}

// sweep drops buckets not used since cutoff and reports how many went.
func (b *localBuckets) sweep(cutoff time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sweepLocked(cutoff)
}

func (b *localBuckets) sweepLocked(cutoff time.Time) int {
	removed := 0
	for key, bk := range b.buckets {
		if bk.lastSeen.Before(cutoff) {
			delete(b.buckets, key)
			removed++
		}
	}
	return removed
}

func (b *localBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}

// PerWindow builds a limit from the configured request count and window.
func PerWindow(requests, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		return PerMinute(requests, burst)
	}
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: window,
	}
}
