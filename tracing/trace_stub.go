//go:build !trace

// Package tracing wraps runtime/trace. Without the trace build tag every
// call is a no-op.
package tracing

import "context"

func Start(path string) error {
	return nil
}

func Stop() {}

func StartTask(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

func StartRegion(ctx context.Context, name string) func() {
	return func() {}
}

func Log(ctx context.Context, category, message string) {}
