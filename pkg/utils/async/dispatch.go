package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// It detaches from the caller's cancellation but preserves the logger, and
// recovers panics so a failing notification can never take down a request.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
