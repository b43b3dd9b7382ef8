// Package observability provides hooks for metrics, tracing, and logging.
//
// The editing core reports gestures, routing calls and layout-cache traffic
// through small hook interfaces. Nothing is recorded unless a consumer
// registers an implementation at startup; the defaults are no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditHooks(&myEditHooks{})
//	    observability.SetRoutingHooks(&myRoutingHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Routing().OnRouteStart(ctx, mode, edgeCount)
//	// ... route ...
//	observability.Routing().OnRouteComplete(ctx, mode, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Edit Hooks
// =============================================================================

// EditHooks receives events from the undo log and the edit orchestrator.
type EditHooks interface {
	// OnActionBegin records that an undoable action was opened.
	OnActionBegin(ctx context.Context, name string)

	// OnActionCommit records a committed action and the number of entities it touched.
	OnActionCommit(ctx context.Context, name string, touched int)

	// OnActionAbort records a discarded action.
	OnActionAbort(ctx context.Context, name string)

	// OnUndo and OnRedo record history navigation.
	OnUndo(ctx context.Context, name string)
	OnRedo(ctx context.Context, name string)
}

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from edge routing and relayout.
type RoutingHooks interface {
	// OnRouteStart records a routing call over edgeCount edges.
	OnRouteStart(ctx context.Context, mode string, edgeCount int)

	// OnRouteComplete records the outcome of a routing call.
	OnRouteComplete(ctx context.Context, mode string, duration time.Duration, err error)

	// OnRouteFailure records a router error or panic that was absorbed.
	OnRouteFailure(ctx context.Context, mode string, err error)

	// OnRelayout records a relayout of a cluster scope.
	OnRelayout(ctx context.Context, scope string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditHooks is a no-op implementation of EditHooks.
type NoopEditHooks struct{}

func (NoopEditHooks) OnActionBegin(context.Context, string)       {}
func (NoopEditHooks) OnActionCommit(context.Context, string, int) {}
func (NoopEditHooks) OnActionAbort(context.Context, string)       {}
func (NoopEditHooks) OnUndo(context.Context, string)              {}
func (NoopEditHooks) OnRedo(context.Context, string)              {}

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnRouteStart(context.Context, string, int) {}
func (NoopRoutingHooks) OnRouteComplete(context.Context, string, time.Duration, error) {
}
func (NoopRoutingHooks) OnRouteFailure(context.Context, string, error)            {}
func (NoopRoutingHooks) OnRelayout(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editHooks    EditHooks    = NoopEditHooks{}
	routingHooks RoutingHooks = NoopRoutingHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetEditHooks registers custom edit hooks.
// This should be called once at application startup before any editing.
func SetEditHooks(h EditHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editHooks = h
	}
}

// SetRoutingHooks registers custom routing hooks.
func SetRoutingHooks(h RoutingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routingHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Edit returns the registered edit hooks.
func Edit() EditHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editHooks
}

// Routing returns the registered routing hooks.
func Routing() RoutingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editHooks = NoopEditHooks{}
	routingHooks = NoopRoutingHooks{}
	cacheHooks = NoopCacheHooks{}
}
