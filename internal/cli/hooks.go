package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/observability"
)

// statsHooks counts editing, routing and cache events for command summaries
// and logs them at debug level.
type statsHooks struct {
	logger *log.Logger

	commits, aborts   atomic.Int64
	undos, redos      atomic.Int64
	routeFailures     atomic.Int64
	cacheHits, misses atomic.Int64
}

// installHooks registers a statsHooks globally until the returned reset is
// called.
func installHooks(l *log.Logger) (*statsHooks, func()) {
	h := &statsHooks{logger: l}
	observability.SetEditHooks(h)
	observability.SetRoutingHooks(h)
	observability.SetCacheHooks(h)
	return h, observability.Reset
}

func (h *statsHooks) OnActionBegin(_ context.Context, name string) {}

func (h *statsHooks) OnActionCommit(_ context.Context, name string, touched int) {
	h.commits.Add(1)
	h.logger.Debugf("Committed %s (%d entities)", name, touched)
}

func (h *statsHooks) OnActionAbort(_ context.Context, name string) {
	h.aborts.Add(1)
	h.logger.Debugf("Aborted %s", name)
}

func (h *statsHooks) OnUndo(context.Context, string) { h.undos.Add(1) }
func (h *statsHooks) OnRedo(context.Context, string) { h.redos.Add(1) }

func (h *statsHooks) OnRouteStart(context.Context, string, int) {}

func (h *statsHooks) OnRouteComplete(_ context.Context, mode string, d time.Duration, err error) {
	if err == nil {
		h.logger.Debugf("Routed %s in %v", mode, d.Round(time.Microsecond))
	}
}

func (h *statsHooks) OnRouteFailure(context.Context, string, error) { h.routeFailures.Add(1) }

func (h *statsHooks) OnRelayout(_ context.Context, scope string, d time.Duration, err error) {
	if err == nil {
		h.logger.Debugf("Relaid out %q in %v", scope, d.Round(time.Microsecond))
	}
}

func (h *statsHooks) OnCacheHit(context.Context, string)      { h.cacheHits.Add(1) }
func (h *statsHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *statsHooks) OnCacheSet(context.Context, string, int) {}

var (
	_ observability.EditHooks    = (*statsHooks)(nil)
	_ observability.RoutingHooks = (*statsHooks)(nil)
	_ observability.CacheHooks   = (*statsHooks)(nil)
)
