// Package main is a one-shot synchronizer: it derives the minimal schedule
// set from the project's cron declarations and reconciles it into Temporal.
package main

import (
	"context"
	"log"

	"github.com/nucleus/mesh-bridge/internal/bridge"
	"github.com/nucleus/mesh-bridge/internal/config"
	"github.com/nucleus/mesh-bridge/internal/engine"
	"github.com/nucleus/mesh-bridge/internal/orchestration"

	// Register the bundled engine driver.
	_ "github.com/nucleus/mesh-bridge/internal/engine/manifest"
)

func main() {
	ctx := context.Background()

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

	groups, err := service.Schedules(ctx)
	if err != nil {
		log.Fatalf("failed to derive schedules: %v", err)
	}
	if len(groups) == 0 {
		log.Printf("no scheduled models in project %s; nothing to sync", cfg.ProjectDir)
		return
	}

	tc, err := orchestration.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to create Temporal client: %v", err)
	}
	defer tc.Close()

	if err := tc.SyncSchedules(ctx, groups); err != nil {
		log.Fatalf("failed to sync schedules: %v", err)
	}

	for _, g := range groups {
		log.Printf("synced schedule %s: cron %q, %d assets", orchestration.ScheduleID(g.Cron), g.Cron, len(g.Keys))
	}
}
