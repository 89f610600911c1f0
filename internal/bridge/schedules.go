package bridge

import (
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// ScheduleGroup is one derived schedule definition: a single cron expression
// and the union of asset keys it governs. Firing the schedule materializes
// the union.
type ScheduleGroup struct {
	Cron string
	Keys []AssetKey
}

// ScheduleDefinitionError means a model's cadence declaration cannot be
// turned into a schedule definition.
type ScheduleDefinitionError struct {
	ModelID string
	Cron    string
	Message string
}

func (e *ScheduleDefinitionError) Error() string {
	return fmt.Sprintf("schedule definition error for model %s (cron %q): %s", e.ModelID, e.Cron, e.Message)
}

// DeriveSchedules groups scheduled models into the minimal, cadence-faithful
// set of schedule definitions: one group per distinct 5-field cron string.
// Distinct cadences are never merged or approximated. Models without a cron
// are excluded entirely; no default cadence is invented for them.
func DeriveSchedules(models []engine.ModelDescriptor, table *KeyTable) ([]ScheduleGroup, error) {
	byCron := make(map[string][]AssetKey)
	for _, m := range models {
		if m.External() || m.Cron == "" {
			continue
		}
		if _, err := cron.ParseStandard(m.Cron); err != nil {
			return nil, &ScheduleDefinitionError{ModelID: m.ID, Cron: m.Cron, Message: err.Error()}
		}
		key, ok := table.Key(m.ID)
		if !ok {
			return nil, &ScheduleDefinitionError{ModelID: m.ID, Cron: m.Cron, Message: "model has no asset key"}
		}
		byCron[m.Cron] = append(byCron[m.Cron], key)
	}

	groups := make([]ScheduleGroup, 0, len(byCron))
	for expr, keys := range byCron {
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		groups = append(groups, ScheduleGroup{Cron: expr, Keys: keys})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Cron < groups[j].Cron })
	return groups, nil
}
