package common

import (
	"context"
	"fmt"
	"time"
)

// LoggingMiddleware logs every dispatched request with its duration and outcome
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		logger := LoggerFromContext(ctx)
		name := fmt.Sprintf("%T", request)
		start := time.Now()

		response, err := next(ctx, request)

		metadata := map[string]interface{}{
			"request":     name,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			logger.Log(LevelError, "Request failed", metadata)
			return nil, err
		}
		logger.Log(LevelDebug, "Request handled", metadata)
		return response, nil
	}
}
