// Package orchestration connects the bridge to Temporal: the materialization
// workflow, its activity, and schedule synchronization.
package orchestration

import (
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/nucleus/mesh-bridge/internal/config"
)

// Client wraps the Temporal client with bridge helpers.
type Client struct {
	client    client.Client
	taskQueue string
	timezone  string
}

// NewClient dials Temporal using the bridge configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	return &Client{client: c, taskQueue: cfg.TemporalTaskQueue, timezone: cfg.ScheduleTimezone}, nil
}

// Close closes the Temporal client connection.
func (c *Client) Close() {
	c.client.Close()
}

// TaskQueue returns the configured task queue name.
func (c *Client) TaskQueue() string { return c.taskQueue }

// Client returns the underlying Temporal client.
func (c *Client) Client() client.Client { return c.client }
