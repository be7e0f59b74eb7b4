package doctor

import (
	"sync"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/marker"
)

// Checker inspects the agents and toolchains installed in the image.
type Checker struct {
	executor CommandExecutor
	home     string
	markers  *marker.Store
}

// NewChecker creates a Checker for the given home directory. markers may be
// nil, in which case LastUpdated is never set.
func NewChecker(home string, markers *marker.Store) *Checker {
	return NewCheckerWithExecutor(&RealExecutor{}, home, markers)
}

// NewCheckerWithExecutor creates a Checker with a custom executor (for testing).
func NewCheckerWithExecutor(exec CommandExecutor, home string, markers *marker.Store) *Checker {
	return &Checker{
		executor: exec,
		home:     home,
		markers:  markers,
	}
}

// CheckAgent reports the state of a single agent.
func (c *Checker) CheckAgent(a agent.Agent) AgentStatus {
	status := AgentStatus{
		Agent:     a.ID,
		Name:      a.Name,
		ConfigDir: a.ConfigPath(c.home),
	}

	status.Installed, status.Version = checkTool(c.executor, a.Command, a.CheckArgs, nil)
	status.Configured = c.executor.FileExists(status.ConfigDir)

	if c.markers != nil {
		if at, ok, err := c.markers.LastUpdated(a.ID); err == nil && ok {
			status.LastUpdated = at
		}
	}
	return status
}

// CheckAgents reports every registered agent in registry order.
func (c *Checker) CheckAgents() []AgentStatus {
	agents := agent.All()
	out := make([]AgentStatus, 0, len(agents))
	for _, a := range agents {
		out = append(out, c.CheckAgent(a))
	}
	return out
}

// CheckAgentsAsync is CheckAgents with the probes run concurrently.
func (c *Checker) CheckAgentsAsync() []AgentStatus {
	agents := agent.All()
	out := make([]AgentStatus, len(agents))
	var wg sync.WaitGroup

	for i, a := range agents {
		wg.Add(1)
		go func(idx int, a agent.Agent) {
			defer wg.Done()
			out[idx] = c.CheckAgent(a)
		}(i, a)
	}

	wg.Wait()
	return out
}

// CheckToolchain runs the toolchain checks in display order.
func (c *Checker) CheckToolchain() []Check {
	ids := ToolIDs()
	out := make([]Check, 0, len(ids))
	for _, id := range ids {
		out = append(out, CheckTool(c.executor, id))
	}
	return out
}

// CheckAll runs all groups sequentially.
func (c *Checker) CheckAll() []CheckGroup {
	var result []CheckGroup
	for _, id := range GetAllGroupIDs() {
		result = append(result, c.CheckGroup(id))
	}
	return result
}

// CheckAllAsync runs all groups concurrently.
func (c *Checker) CheckAllAsync() []CheckGroup {
	ids := GetAllGroupIDs()
	result := make([]CheckGroup, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(idx int, groupID string) {
			defer wg.Done()
			result[idx] = c.CheckGroup(groupID)
		}(i, id)
	}

	wg.Wait()
	return result
}

// CheckGroup runs all checks for a specific group.
func (c *Checker) CheckGroup(groupID string) CheckGroup {
	def, ok := GetGroupDefinition(groupID)
	if !ok {
		return CheckGroup{ID: groupID, Name: "Unknown"}
	}

	group := CheckGroup{
		ID:          groupID,
		Name:        def.Name,
		Description: def.Description,
	}

	switch groupID {
	case GroupAgents:
		for _, s := range c.CheckAgentsAsync() {
			group.Checks = append(group.Checks, s.Check())
		}
	case GroupToolchain:
		group.Checks = c.CheckToolchain()
	}
	return group
}

// Check converts an agent status into a generic check result. An agent
// that is installed but has no config directory is a warning.
func (s AgentStatus) Check() Check {
	check := Check{
		ID:         s.Agent,
		Name:       s.Name,
		FixCommand: GetFixCommand(s.Agent),
	}
	if a := agent.Get(s.Agent); a != nil {
		check.Description = a.Description
	}

	switch {
	case !s.Installed:
		check.Status = StatusMissing
		check.Message = "not installed"
	case !s.Configured:
		check.Status = StatusWarning
		check.Message = "installed, not configured"
		if s.Version != "" {
			check.Message = s.Version + ", not configured"
		}
	default:
		check.Status = StatusOK
		check.Message = s.Version
		if check.Message == "" {
			check.Message = "installed"
		}
	}
	return check
}

// Summary represents an overall health summary.
type Summary struct {
	Total    int
	OK       int
	Missing  int
	Warnings int
	Errors   int
}

// GetSummary returns a summary of check results.
func (c *Checker) GetSummary(groups []CheckGroup) Summary {
	var summary Summary

	for _, group := range groups {
		for _, check := range group.Checks {
			summary.Total++
			switch check.Status {
			case StatusOK:
				summary.OK++
			case StatusMissing:
				summary.Missing++
			case StatusWarning:
				summary.Warnings++
			case StatusError:
				summary.Errors++
			}
		}
	}

	return summary
}

// HasIssues reports whether any check is missing or failed. Warnings do
// not count.
func (c *Checker) HasIssues(groups []CheckGroup) bool {
	for _, group := range groups {
		for _, check := range group.Checks {
			if check.Status == StatusMissing || check.Status == StatusError {
				return true
			}
		}
	}
	return false
}
