package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

func TestContextManager_SingleConstruction(t *testing.T) {
	fake := &fakeEngine{delay: 20 * time.Millisecond, project: &fakeProject{}}
	manager := NewContextManager(fake, engine.Config{ProjectDir: "/tmp/project"})

	const callers = 25
	contexts := make([]engine.ProjectContext, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			contexts[i], errs[i] = manager.Get(context.Background())
		}(i)
	}
	wg.Wait()

	if got := fake.openCount(); got != 1 {
		t.Fatalf("expected exactly 1 context construction, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d got error: %v", i, errs[i])
		}
		if contexts[i] != contexts[0] {
			t.Errorf("caller %d got a different context instance", i)
		}
	}
}

func TestContextManager_InvalidateRebuilds(t *testing.T) {
	fake := &fakeEngine{project: &fakeProject{}}
	manager := NewContextManager(fake, engine.Config{ProjectDir: "/tmp/project"})

	first, err := manager.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	manager.Invalidate()
	if !fake.project.closed {
		t.Error("expected Invalidate to close the cached context")
	}

	second, err := manager.Get(context.Background())
	if err != nil {
		t.Fatalf("Get after Invalidate failed: %v", err)
	}
	if fake.openCount() != 2 {
		t.Errorf("expected 2 constructions after invalidation, got %d", fake.openCount())
	}
	_ = first
	_ = second
}

func TestContextManager_InitializationErrorNotCached(t *testing.T) {
	fake := &fakeEngine{openErr: errors.New("gateway unreachable")}
	manager := NewContextManager(fake, engine.Config{ProjectDir: "/tmp/project", Gateway: "duck"})

	_, err := manager.Get(context.Background())
	var initErr *engine.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitializationError, got %v", err)
	}
	if initErr.Gateway != "duck" {
		t.Errorf("expected gateway preserved in error, got %q", initErr.Gateway)
	}

	// Failure is not cached: the next call constructs again.
	manager.Get(context.Background())
	if fake.openCount() != 2 {
		t.Errorf("expected retry after failed construction, got %d opens", fake.openCount())
	}
}

func TestContextManager_AppliesConfigDefaults(t *testing.T) {
	manager := NewContextManager(&fakeEngine{}, engine.Config{ProjectDir: "/tmp/project"})

	cfg := manager.Config()
	if cfg.Gateway != engine.DefaultGateway {
		t.Errorf("expected default gateway %q, got %q", engine.DefaultGateway, cfg.Gateway)
	}
	if cfg.Environment != engine.DefaultEnvironment {
		t.Errorf("expected default environment %q, got %q", engine.DefaultEnvironment, cfg.Environment)
	}
	if cfg.ConcurrencyLimit != 1 {
		t.Errorf("expected default concurrency limit 1, got %d", cfg.ConcurrencyLimit)
	}
}
