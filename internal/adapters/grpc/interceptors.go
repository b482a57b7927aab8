package grpc

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
)

// NewRateLimiter creates a token bucket allowing requestsPerSecond with the given burst
func NewRateLimiter(requestsPerSecond, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// RateLimitInterceptor waits for a token before handling each call.
// A caller whose deadline expires while waiting gets ResourceExhausted.
func RateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s: %v", info.FullMethod, err)
		}
		return handler(ctx, req)
	}
}

// TimeoutInterceptor bounds every call to the given duration
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if timeout <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

// LoggerInterceptor puts the daemon logger into each request context and logs failures
func LoggerInterceptor(logger common.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx = common.WithLogger(ctx, logger)
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Log(common.LevelWarn, "RPC failed", map[string]interface{}{
				"method":      info.FullMethod,
				"code":        status.Code(err).String(),
				"error":       err.Error(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return nil, err
		}
		logger.Log(common.LevelDebug, "RPC completed", map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return resp, nil
	}
}
