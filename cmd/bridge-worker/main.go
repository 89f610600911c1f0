// Package main is the entry point for the mesh-bridge Temporal worker.
// It validates the published asset graph at startup, then serves the
// materialization workflow and activity.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/nucleus/mesh-bridge/internal/bridge"
	"github.com/nucleus/mesh-bridge/internal/config"
	"github.com/nucleus/mesh-bridge/internal/engine"
	"github.com/nucleus/mesh-bridge/internal/orchestration"
	"github.com/nucleus/mesh-bridge/internal/store"

	// Register the bundled engine driver.
	_ "github.com/nucleus/mesh-bridge/internal/engine/manifest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	eng, err := engine.New(cfg.EngineDriver)
	if err != nil {
		log.Fatalf("failed to select engine driver: %v", err)
	}

	manager := bridge.NewContextManager(eng, cfg.EngineConfig())
	service := bridge.NewService(manager, bridge.NewTranslator(nil))

	// Definition-time validation: initialization and translation failures
	// are fatal before anything is published.
	specs, err := service.Specs(ctx)
	if err != nil {
		log.Fatalf("failed to publish asset graph: %v", err)
	}
	log.Printf("asset graph validated: %d assets, %d checks", len(specs.Assets), len(specs.Checks))

	var runs *store.Client
	if cfg.DatabaseURL != "" {
		runs, err = store.NewClient(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to run store: %v", err)
		}
		defer runs.Close()
	}

	tc, err := orchestration.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to create Temporal client: %v", err)
	}
	defer tc.Close()

	w := worker.New(tc.Client(), tc.TaskQueue(), worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.ConcurrencyLimit,
	})

	activities := orchestration.NewActivities(service, runs)
	w.RegisterActivityWithOptions(activities.MaterializeSelection, activity.RegisterOptions{
		Name: orchestration.MaterializeSelectionActivity,
	})
	w.RegisterWorkflowWithOptions(orchestration.MaterializeSelectionWorkflowFunc, workflow.RegisterOptions{
		Name: orchestration.MaterializeSelectionWorkflow,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(worker.InterruptCh())
	}()

	log.Printf("mesh-bridge worker started on task queue: %s (driver=%s project=%s)",
		tc.TaskQueue(), cfg.EngineDriver, cfg.ProjectDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %s, shutting down...", sig)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Printf("worker error: %v", err)
		}
	}
}
