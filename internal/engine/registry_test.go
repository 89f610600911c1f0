package engine

import (
	"context"
	"strings"
	"testing"
)

type noopEngine struct{}

func (noopEngine) Open(ctx context.Context, cfg Config) (ProjectContext, error) {
	return nil, nil
}

func TestRegistry_RegisterAndNew(t *testing.T) {
	Register("noop-test", func() Engine { return noopEngine{} })

	eng, err := New("noop-test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := eng.(noopEngine); !ok {
		t.Fatalf("expected noopEngine, got %T", eng)
	}

	found := false
	for _, name := range Drivers() {
		if name == "noop-test" {
			found = true
		}
	}
	if !found {
		t.Error("expected noop-test in driver listing")
	}
}

func TestRegistry_UnknownDriver(t *testing.T) {
	_, err := New("no-such-driver")
	if err == nil || !strings.Contains(err.Error(), "unknown engine driver") {
		t.Fatalf("expected unknown-driver error, got %v", err)
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	Register("dup-test", func() Engine { return noopEngine{} })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("dup-test", func() Engine { return noopEngine{} })
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{ProjectDir: "/srv/project"}.WithDefaults()

	if cfg.Gateway != DefaultGateway || cfg.Environment != DefaultEnvironment || cfg.ConcurrencyLimit != 1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error for missing project dir")
	}
	if err := (Config{ProjectDir: "/p", ConcurrencyLimit: -1}).Validate(); err == nil {
		t.Error("expected error for negative concurrency limit")
	}
}
