package bridge

import (
	"context"
	"sync"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// ContextManager owns the lazily constructed, cached engine project context.
// The first caller constructs it; concurrent callers block on the same lock
// and then share the result. Exactly one construction happens per manager
// instance regardless of concurrent demand, until Invalidate.
type ContextManager struct {
	eng engine.Engine
	cfg engine.Config

	mu     sync.RWMutex
	cached engine.ProjectContext
}

// NewContextManager creates a manager for the given driver and config.
// Nothing is constructed until the first Get.
func NewContextManager(eng engine.Engine, cfg engine.Config) *ContextManager {
	return &ContextManager{eng: eng, cfg: cfg.WithDefaults()}
}

// Get returns the shared project context, constructing it on first use.
// Construction failures are returned and not cached; a later call retries.
func (m *ContextManager) Get(ctx context.Context) (engine.ProjectContext, error) {
	m.mu.RLock()
	cached := m.cached
	m.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have finished construction while we waited.
	if m.cached != nil {
		return m.cached, nil
	}
	pctx, err := m.eng.Open(ctx, m.cfg)
	if err != nil {
		return nil, err
	}
	m.cached = pctx
	return pctx, nil
}

// Invalidate closes and clears the cached context; the next Get rebuilds.
func (m *ContextManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != nil {
		m.cached.Close()
		m.cached = nil
	}
}

// Config returns the effective engine config, defaults applied.
func (m *ContextManager) Config() engine.Config { return m.cfg }
