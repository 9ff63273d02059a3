// Package intercept provides DecodeInterceptor implementations and the glue
// to compose them.  An interceptor sees the raw payload immediately before
// decode and is the last authority on decode behavior: it can rewrite the
// bytes, decode them itself, or delegate unchanged.
package intercept

import (
	"context"

	"github.com/Skryldev/image-loader/core"
)

// Func adapts a plain function to core.Interceptor.
type Func func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error)

func (f Func) Intercept(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
	return f(ctx, data, hint, decode)
}

// Chain composes interceptors so the first one listed sees the bytes first;
// each interceptor's decode function invokes the next in line.
func Chain(interceptors ...core.Interceptor) core.Interceptor {
	return Func(func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
		next := decode
		for i := len(interceptors) - 1; i >= 0; i-- {
			ic := interceptors[i]
			downstream := next
			next = func(ctx context.Context, data []byte, hint core.SizeHint) (*core.Codec, error) {
				return ic.Intercept(ctx, data, hint, downstream)
			}
		}
		return next(ctx, data, hint)
	})
}
