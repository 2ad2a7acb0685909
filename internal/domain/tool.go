package domain

import "time"

// ToolFunction is a named function definition stored in the shared tools file.
// Code holds the full Go source of the definition, doc comment included.
type ToolFunction struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ToolRevision is one recorded mutation of a tool function.
type ToolRevision struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Op        string    `json:"op"` // "create" | "update" | "delete"
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Revision operations.
const (
	RevisionCreate = "create"
	RevisionUpdate = "update"
	RevisionDelete = "delete"
)
