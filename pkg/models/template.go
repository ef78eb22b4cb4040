// Package models defines the domain models shared by the indexing pipeline,
// the query API, and the MCP tool surface.
package models

import "time"

// TriggerType is the coarse classification of what starts a workflow.
type TriggerType string

const (
	TriggerWebhook  TriggerType = "webhook"
	TriggerSchedule TriggerType = "schedule"
	TriggerManual   TriggerType = "manual"
	TriggerComplex  TriggerType = "complex"
)

// Complexity is the derived difficulty classification of a workflow.
type Complexity string

const (
	ComplexitySimple       Complexity = "simple"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Rank orders complexities simple < intermediate < advanced. Unknown values
// rank lowest, matching the popularity ranking's ELSE branch.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityAdvanced:
		return 3
	case ComplexityIntermediate:
		return 2
	default:
		return 1
	}
}

// Template is one extracted record, keyed by the source file's identity.
// All derived fields are recomputed whenever the source fingerprint changes.
type Template struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	NodesCount    int         `json:"nodes_count"`
	Services      []string    `json:"services"`
	TriggerType   TriggerType `json:"trigger_type"`
	Complexity    Complexity  `json:"complexity"`
	UseCases      []string    `json:"use_cases"`
	FileHash      string      `json:"-"`
	RawDefinition []byte      `json:"-"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

// SearchRequest are the parameters accepted by the search operation.
// Category and TriggerType are exact-match filters when non-empty.
type SearchRequest struct {
	Query       string `json:"query"`
	Category    string `json:"category,omitempty"`
	TriggerType string `json:"trigger_type,omitempty"`
	Limit       int    `json:"limit"`
}

// TemplateDetail is the full record plus statistics computed from the raw
// definition, returned by the single-record fetch.
type TemplateDetail struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	WorkflowJSON map[string]any `json:"workflow_json"`
	Nodes        []any          `json:"nodes"`
	Connections  map[string]any `json:"connections"`
	Statistics   map[string]int `json:"statistics"`
}

// NamedCount pairs a distinct value with its occurrence count.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TriggerCount pairs a trigger type with its occurrence count.
type TriggerCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ComplexityCount pairs a complexity level with its occurrence count.
type ComplexityCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// ServiceList is the aggregate service listing: the top services by
// occurrence plus the total number of distinct services seen.
type ServiceList struct {
	Services            []NamedCount `json:"services"`
	TotalUniqueServices int          `json:"total_unique_services"`
}

// DatabaseStats are the aggregate statistics over the whole store.
type DatabaseStats struct {
	TotalWorkflows          int               `json:"total_workflows"`
	TotalNodes              int               `json:"total_nodes"`
	AverageNodesPerWorkflow float64           `json:"average_nodes_per_workflow"`
	Categories              []NamedCount      `json:"categories"`
	TriggerTypes            []TriggerCount    `json:"trigger_types"`
	Complexity              []ComplexityCount `json:"complexity_distribution"`
}
