package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/layout"
	"github.com/astrostats/astrowheel/pkg/observability"
)

// Runner lays out and renders charts through a cache. The CLI and the HTTP
// server share this type; it holds no per-chart state, so one Runner may serve
// concurrent calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage entry lifetimes when non-zero.
	TTL time.Duration
}

// NewRunner returns a Runner. Nil arguments select caching off, the default
// keyer and log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute lays out c and renders every requested format.
func (r *Runner) Execute(ctx context.Context, c *chart.Chart, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	chartHash, err := ChartHash(c)
	if err != nil {
		return nil, err
	}
	out := &Result{ChartHash: chartHash}

	t0 := time.Now()
	res, hit, err := r.layout(ctx, c, chartHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	out.Layout, out.Stats = res, stats(res)
	out.Stats.LayoutTime = time.Since(t0)
	out.CacheInfo.LayoutHit = hit
	r.Logger.Info("layout", "chart", c.Name, "pairs", out.Stats.Pairs,
		"displaced", out.Stats.Displaced, "cached", hit, "took", out.Stats.LayoutTime)

	t1 := time.Now()
	arts, hit, err := r.render(ctx, c, chartHash, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out.Artifacts = arts
	out.Stats.RenderTime = time.Since(t1)
	out.CacheInfo.RenderHit = hit
	r.Logger.Info("render", "chart", c.Name, "formats", opts.Formats, "cached", hit, "took", out.Stats.RenderTime)

	return out, nil
}

// Layout computes the layout for c, consulting the cache first.
func (r *Runner) Layout(ctx context.Context, c *chart.Chart, opts Options) (layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, err
	}
	chartHash, err := ChartHash(c)
	if err != nil {
		return layout.Result{}, err
	}
	res, _, err := r.layout(ctx, c, chartHash, opts)
	return res, err
}

// Render generates artifacts for a computed layout, consulting the cache first.
func (r *Runner) Render(ctx context.Context, c *chart.Chart, res layout.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	chartHash, err := ChartHash(c)
	if err != nil {
		return nil, err
	}
	artifacts, _, err := r.render(ctx, c, chartHash, res, opts)
	return artifacts, err
}

func (r *Runner) layout(ctx context.Context, c *chart.Chart, chartHash string, opts Options) (res layout.Result, hit bool, err error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, c.Name, len(c.Positions))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, c.Name, observability.LayoutStats{
			Bodies:    len(res.Positions),
			Pairs:     len(res.Pairs),
			Displaced: res.Displaced(),
		}, time.Since(start), err)
	}()

	cacheKey := r.Keyer.LayoutKey(chartHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.get(ctx, "layout", cacheKey); ok {
			cached, err := UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			r.Logger.Warn("discarding unreadable cached layout", "key", cacheKey, "err", err)
		}
	}

	res = ComputeLayout(c, opts)

	if data, err := MarshalLayout(res); err == nil {
		r.set(ctx, "layout", cacheKey, data, r.ttl(cache.TTLLayout))
	}
	return res, false, nil
}

func (r *Runner) render(ctx context.Context, c *chart.Chart, chartHash string, res layout.Result, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	// The wheel depends on the cusps and the title on the chart name, neither of
	// which is part of the layout, so the artifact key covers both hashes.
	layoutData, err := MarshalLayout(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	keyHash := cache.Hash(append([]byte(chartHash+"\n"), layoutData...))

	// All formats must hit or the whole set is rendered again.
	if !opts.Refresh {
		cached := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, "artifact", r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			cached[format] = data
		}
		if len(cached) == len(opts.Formats) {
			return cached, true, nil
		}
	}

	artifacts, err = Render(ctx, c, res, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range artifacts {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)), data, r.ttl(cache.TTLArtifact))
	}
	return artifacts, false, nil
}

// get reads a cache entry. Backend errors are logged and treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

// set writes a cache entry. Failures only cost a future recomputation.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger gives opts the runner's logger unless the caller set one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
