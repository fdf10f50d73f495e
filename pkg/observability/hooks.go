// Package observability lets the pipeline, the cache layer and the HTTP server
// report what they do without knowing who is listening.
//
// Each emitting layer reads its hook set from this package at call time. The
// process registers listeners once at startup; until then every hook is a
// no-op. [LogHooks] is the only listener shipped here and backs the CLI's
// --verbose mode:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// Emitting code looks like:
//
//	start := time.Now()
//	observability.Pipeline().OnLayoutStart(ctx, c.Name, len(c.Positions))
//	res := engine.Run(c.Positions, c.Cusps)
//	observability.Pipeline().OnLayoutComplete(ctx, c.Name, stats, time.Since(start), nil)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutStats summarizes one engine run.
type LayoutStats struct {
	Bodies    int
	Pairs     int
	Displaced int
}

// PipelineHooks observes layout runs and artifact rendering.
type PipelineHooks interface {
	OnLayoutStart(ctx context.Context, chart string, bodies int)
	OnLayoutComplete(ctx context.Context, chart string, stats LayoutStats, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes cache lookups. keyType is "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks observes HTTP requests by route pattern.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, LayoutStats, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// hookSet is swapped as a whole so readers never see a half-updated registry.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	server   ServerHooks
}

var (
	noops   = &hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopServerHooks{}}
	current atomic.Pointer[hookSet]
)

func init() { current.Store(noops) }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Register installs h for every hook interface it implements and reports
// whether it implemented any.
func Register(h any) bool {
	p, isP := h.(PipelineHooks)
	c, isC := h.(CacheHooks)
	s, isS := h.(ServerHooks)
	update(func(hs *hookSet) {
		if isP {
			hs.pipeline = p
		}
		if isC {
			hs.cache = c
		}
		if isS {
			hs.server = s
		}
	})
	return isP || isC || isS
}

// SetPipelineHooks installs h as the pipeline listener. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(hs *hookSet) { hs.pipeline = h })
	}
}

// SetCacheHooks installs h as the cache listener. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(hs *hookSet) { hs.cache = h })
	}
}

// SetServerHooks installs h as the server listener. Nil is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		update(func(hs *hookSet) { hs.server = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }
func Cache() CacheHooks       { return current.Load().cache }
func Server() ServerHooks     { return current.Load().server }

// Reset puts the no-op listeners back. Tests that register hooks call it in cleanup.
func Reset() { current.Store(noops) }
