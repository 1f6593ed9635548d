package handlers

import (
	"net"
	"net/http"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/logger"
)

// RateLimit wraps next with a per-client-IP sliding limit backed by Redis,
// shared across instances. On limiter errors the request is allowed through.
func RateLimit(redisCache *cache.Redis, requestsPerMinute int, next http.Handler) http.Handler {
	limiter := redis_rate.NewLimiter(redisCache.Client())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		res, err := limiter.Allow(r.Context(), "ratelimit:"+host, redis_rate.PerMinute(requestsPerMinute))
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if res.Allowed == 0 {
			logger.Log.Info("Request rate limited",
				zap.String("client", host),
				zap.Duration("retry_after", res.RetryAfter),
			)
			w.Header().Set("Retry-After", res.RetryAfter.String())
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
