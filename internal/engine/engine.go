// Package engine defines the stable contract between the bridge and the
// external transformation engine.
//
// Architecture:
//
//	Engine          - Driver entry point (Open a project context from config)
//	ProjectContext  - Constructed handle bound to {project dir, gateway, environment}
//	EventSink       - Receiver for the engine's run-time event stream
//
// The engine's own SQL compilation and execution live behind this contract;
// the bridge only consumes model listings, plan summaries and run events.
package engine

import (
	"context"
	"fmt"
	"time"
)

// Defaults applied by Config.WithDefaults.
const (
	DefaultGateway     = "postgres"
	DefaultEnvironment = "prod"
)

// Config identifies the engine project a context is bound to.
type Config struct {
	ProjectDir       string
	Gateway          string
	Environment      string
	ConcurrencyLimit int
	IgnoreCron       bool
}

// WithDefaults returns a copy of the config with empty fields filled in.
func (c Config) WithDefaults() Config {
	if c.Gateway == "" {
		c.Gateway = DefaultGateway
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.ConcurrencyLimit == 0 {
		c.ConcurrencyLimit = 1
	}
	return c
}

// Validate checks the config before a context is constructed.
func (c Config) Validate() error {
	if c.ProjectDir == "" {
		return fmt.Errorf("project dir is required")
	}
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("concurrency limit must be positive, got %d", c.ConcurrencyLimit)
	}
	return nil
}

// Engine constructs project contexts. Implementations register themselves
// through Register and are selected by driver name.
type Engine interface {
	// Open constructs a project context for the given config.
	// Returns *InitializationError when the engine rejects the
	// project/gateway/environment combination.
	Open(ctx context.Context, cfg Config) (ProjectContext, error)
}

// ProjectContext is the constructed handle to the engine's project state.
// It is safe for concurrent use; the bridge shares one instance across
// parallel orchestrator invocations.
type ProjectContext interface {
	// Models returns the declared transformation models, external tables
	// included.
	Models(ctx context.Context) ([]ModelDescriptor, error)

	// Plan computes a plan for the selected models without applying it and
	// streams plan events into the sink.
	Plan(ctx context.Context, modelIDs []string, sink EventSink) (*PlanSummary, error)

	// Run executes the selected models, streaming evaluation and audit
	// events into the sink. Cancellation of ctx interrupts the run
	// cooperatively.
	Run(ctx context.Context, req RunRequest, sink EventSink) error

	// Close releases any resources held by the context.
	Close() error
}

// RunRequest parameterizes a single engine run.
type RunRequest struct {
	Environment   string
	ModelIDs      []string
	ExecutionTime time.Time
	// IgnoreCron bypasses cadence gating: every selected model runs
	// regardless of its declared cron.
	IgnoreCron bool
}

// EventSink receives the engine's run-time event stream. Publish must not
// block; implementations buffer.
type EventSink interface {
	Publish(Event)
}
