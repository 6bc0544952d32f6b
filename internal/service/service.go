package service

import (
	"context"
	"time"
)

const defaultStoreTimeout = 5 * time.Second

// storeCtx bounds a persistence call. Blocked stores fail the originating
// operation with a retryable error instead of hanging the handling task.
func storeCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
