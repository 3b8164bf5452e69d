package pipeline

import (
	"context"
	"time"

	"github.com/pgatlas/pgatlas/pkg/cache"
	"github.com/pgatlas/pgatlas/pkg/observability"
	"github.com/pgatlas/pgatlas/pkg/render"
)

// TTLRender is how long rendered diagrams stay cached.
const TTLRender = 24 * time.Hour

// Render draws the active dependency graph of res. Diagrams are cached by
// graph hash, config fingerprint, format and options; the returned bool
// reports a cache hit.
func (r *Runner) Render(ctx context.Context, res *Result, format string, opts render.Options) ([]byte, bool, error) {
	key := cache.Key("render", res.GraphHash, res.Config.Fingerprint(), format, opts.Detailed, opts.Ecosystem)
	hooks := observability.Cache()

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, format)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, format)

	data, err := render.Render(ctx, render.Input{
		Graph:   res.Active,
		Cores:   res.Cores,
		Bridges: res.Bridges,
	}, format, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, TTLRender); err == nil {
		hooks.OnCacheSet(ctx, format, len(data))
	}
	r.Logger.Debug("rendered diagram", "format", format, "bytes", len(data))
	return data, false, nil
}
