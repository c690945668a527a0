package collector

import (
	"context"

	"github.com/google/uuid"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// AgentCollector reports facts about the agent process itself. The run id
// changes with every process start so consumers can tell counter resets
// caused by restarts from real drops.
type AgentCollector struct {
	runID   string
	version string
}

// NewAgentCollector creates an agent collector with a fresh run id.
func NewAgentCollector(version string) *AgentCollector {
	return &AgentCollector{runID: uuid.NewString(), version: version}
}

// Name returns the collector identifier.
func (c *AgentCollector) Name() string { return "agent" }

// RunID returns the id generated for this process.
func (c *AgentCollector) RunID() string { return c.runID }

// Collect returns run_id and version.
func (c *AgentCollector) Collect(context.Context) (report.Node, error) {
	return report.NewMap().
		Set("run_id", report.String(c.runID)).
		Set("version", report.String(c.version)), nil
}

// IsAvailable always returns true.
func (c *AgentCollector) IsAvailable() bool { return true }
