package domain

import (
	"slices"
	"sort"
)

// AgentConfig describes a managed agent. Name doubles as the agent's
// directory name and must be a valid Go identifier.
type AgentConfig struct {
	Name        string   `json:"name"`
	Model       string   `json:"model"`
	Description string   `json:"description,omitempty"`
	Instruction string   `json:"instruction"`
	Tools       []string `json:"tools,omitempty"` // tool function names
}

// NormalizeTools returns the agent's tool references deduplicated and sorted.
// Generated code references each tool exactly once regardless of how the
// caller listed them.
func (a AgentConfig) NormalizeTools() []string {
	out := slices.Clone(a.Tools)
	sort.Strings(out)
	return slices.Compact(out)
}
