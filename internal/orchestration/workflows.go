package orchestration

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/nucleus/mesh-bridge/internal/bridge"
)

// =============================================================================
// WORKFLOW / ACTIVITY NAMES
// =============================================================================

const (
	MaterializeSelectionWorkflow = "materializeSelectionWorkflow"
	MaterializeSelectionActivity = "MaterializeSelection"
)

var materializeActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 2 * time.Hour,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    time.Second * 5,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute * 5,
		MaximumAttempts:    3,
		// A failed model evaluation comes back inside the report, not as an
		// activity error, so retries only cover infrastructure failures.
		NonRetryableErrorTypes: []string{"TranslationError", "InitializationError"},
	},
}

// MaterializeInput selects the asset keys to materialize. Empty means every
// managed model.
type MaterializeInput struct {
	Keys []string `json:"keys,omitempty"`
}

// MaterializeSelectionWorkflowFunc drives one materialization run through the
// bridge activity and returns the run report.
func MaterializeSelectionWorkflowFunc(ctx workflow.Context, input MaterializeInput) (*bridge.RunReport, error) {
	ctx = workflow.WithActivityOptions(ctx, materializeActivityOptions)

	logger := workflow.GetLogger(ctx)
	logger.Info("starting materialization", "keys", len(input.Keys))

	var report bridge.RunReport
	if err := workflow.ExecuteActivity(ctx, MaterializeSelectionActivity, input).Get(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
