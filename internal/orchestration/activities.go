package orchestration

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/nucleus/mesh-bridge/internal/bridge"
	"github.com/nucleus/mesh-bridge/internal/store"
)

// Activities hosts the bridge activities. The run store is optional; when
// nil, reports are returned but not persisted.
type Activities struct {
	service *bridge.Service
	runs    *store.Client
}

// NewActivities creates the activity host.
func NewActivities(service *bridge.Service, runs *store.Client) *Activities {
	return &Activities{service: service, runs: runs}
}

// MaterializeSelection materializes the selected asset keys through the
// shared engine context and returns the run report.
func (a *Activities) MaterializeSelection(ctx context.Context, input MaterializeInput) (*bridge.RunReport, error) {
	selection := make([]bridge.AssetKey, 0, len(input.Keys))
	for _, raw := range input.Keys {
		selection = append(selection, bridge.ParseAssetKey(raw))
	}

	report, err := a.service.Materialize(ctx, selection)
	if err != nil {
		return nil, err
	}

	if a.runs != nil {
		if err := a.runs.SaveReport(ctx, selection, report); err != nil {
			// Persistence is best-effort; the report itself is the result.
			activity.GetLogger(ctx).Warn("failed to persist run report", "runId", report.RunID, "error", err)
		}
	}
	return report, nil
}
