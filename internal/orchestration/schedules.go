package orchestration

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"go.temporal.io/sdk/client"

	"github.com/nucleus/mesh-bridge/internal/bridge"
)

// ScheduleID derives a stable Temporal schedule id from a cron expression.
// Same cron, same id, across syncs.
func ScheduleID(cronExpr string) string {
	h := fnv.New32a()
	h.Write([]byte(cronExpr))

	slug := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '*' {
			return r
		}
		return '-'
	}, strings.ToLower(cronExpr))
	slug = strings.ReplaceAll(slug, "*", "any")
	slug = strings.Trim(slug, "-")

	return fmt.Sprintf("mesh-%s-%08x", slug, h.Sum32())
}

// SyncSchedules creates or updates one Temporal schedule per derived group.
// Each schedule fires the materialization workflow over the union of its
// group's asset keys.
func (c *Client) SyncSchedules(ctx context.Context, groups []bridge.ScheduleGroup) error {
	for _, group := range groups {
		keys := make([]string, 0, len(group.Keys))
		for _, k := range group.Keys {
			keys = append(keys, k.String())
		}

		scheduleID := ScheduleID(group.Cron)
		if err := c.ensureSchedule(ctx, scheduleID, group.Cron, MaterializeInput{Keys: keys}); err != nil {
			return fmt.Errorf("failed to sync schedule %s (cron %q): %w", scheduleID, group.Cron, err)
		}
	}
	return nil
}

func (c *Client) ensureSchedule(ctx context.Context, scheduleID, cronExpr string, input MaterializeInput) error {
	handle := c.client.ScheduleClient().GetHandle(ctx, scheduleID)

	// Existing schedule: update in place.
	if _, err := handle.Describe(ctx); err == nil {
		return handle.Update(ctx, client.ScheduleUpdateOptions{
			DoUpdate: func(u client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
				u.Description.Schedule.Spec = &client.ScheduleSpec{
					CronExpressions: []string{cronExpr},
					TimeZoneName:    c.timezone,
				}
				u.Description.Schedule.Action = c.scheduleAction(scheduleID, input)
				return &client.ScheduleUpdate{Schedule: &u.Description.Schedule}, nil
			},
		})
	}

	_, err := c.client.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: scheduleID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{cronExpr},
			TimeZoneName:    c.timezone,
		},
		Action: c.scheduleAction(scheduleID, input),
	})
	return err
}

func (c *Client) scheduleAction(scheduleID string, input MaterializeInput) *client.ScheduleWorkflowAction {
	return &client.ScheduleWorkflowAction{
		ID:        scheduleID + "-run",
		Workflow:  MaterializeSelectionWorkflow,
		Args:      []interface{}{input},
		TaskQueue: c.taskQueue,
	}
}
