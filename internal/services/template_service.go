// Package services implements the read-side query engine over the template
// store.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"workflow-templates/backend/internal/repository"
	"workflow-templates/backend/pkg/models"
)

const (
	// DefaultSearchLimit caps search results when the caller gives no limit.
	DefaultSearchLimit = 20
	// DefaultPopularLimit caps popularity results when the caller gives no limit.
	DefaultPopularLimit = 10
	// MaxPopularLimit is the hard ceiling on popularity results.
	MaxPopularLimit = 50
	// topServices caps the aggregate service listing.
	topServices = 50
)

// TemplateService answers queries against the template store. It is a pure
// read surface; ingestion owns all writes.
type TemplateService struct {
	store repository.TemplateStore
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(store repository.TemplateStore) *TemplateService {
	return &TemplateService{store: store}
}

// Search runs a free-text plus filtered search, ordered by node count
// descending and truncated to the limit. A whitespace-only query is treated
// as blank, selecting by filters alone.
func (s *TemplateService) Search(ctx context.Context, req models.SearchRequest) ([]*models.Template, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}
	return s.store.Search(ctx, req)
}

// GetByID returns the full record plus statistics computed from its raw
// definition. Returns repository.ErrNotFound for an unknown id.
func (s *TemplateService) GetByID(ctx context.Context, id string) (*models.TemplateDetail, error) {
	tmpl, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var workflowJSON map[string]any
	if err := json.Unmarshal(tmpl.RawDefinition, &workflowJSON); err != nil {
		return nil, fmt.Errorf("parse stored definition for %s: %w", id, err)
	}

	nodes, _ := workflowJSON["nodes"].([]any)
	connections, _ := workflowJSON["connections"].(map[string]any)

	nodeTypes := map[string]int{}
	for _, raw := range nodes {
		nodeType := "unknown"
		if node, ok := raw.(map[string]any); ok {
			if t, ok := node["type"].(string); ok && t != "" {
				nodeType = t
			}
		}
		nodeTypes[nodeType]++
	}

	// Connection values are either flat link lists or objects keyed by
	// output port; both shapes contribute their length.
	connectionCount := 0
	for _, links := range connections {
		switch v := links.(type) {
		case []any:
			connectionCount += len(v)
		case map[string]any:
			connectionCount += len(v)
		}
	}

	statistics := map[string]int{
		"total_nodes":       len(nodes),
		"connection_count":  connectionCount,
		"unique_node_types": len(nodeTypes),
	}
	for nodeType, count := range nodeTypes {
		statistics[nodeType] = count
	}

	return &models.TemplateDetail{
		ID:           tmpl.ID,
		Name:         tmpl.Name,
		Description:  tmpl.Description,
		WorkflowJSON: workflowJSON,
		Nodes:        nodes,
		Connections:  connections,
		Statistics:   statistics,
	}, nil
}

// ListCategories returns distinct categories with counts, descending.
func (s *TemplateService) ListCategories(ctx context.Context) ([]models.NamedCount, error) {
	return s.store.ListCategories(ctx)
}

// ListTriggerTypes returns distinct trigger types with counts, descending.
func (s *TemplateService) ListTriggerTypes(ctx context.Context) ([]models.TriggerCount, error) {
	return s.store.ListTriggerTypes(ctx)
}

// ListServices flattens the service sets across all records, counts
// occurrences, and returns the top entries by count along with the total
// number of distinct services.
func (s *TemplateService) ListServices(ctx context.Context) (*models.ServiceList, error) {
	sets, err := s.store.ListServiceSets(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, set := range sets {
		for _, service := range set {
			counts[service]++
		}
	}

	ranked := make([]models.NamedCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.NamedCount{Name: name, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	list := &models.ServiceList{TotalUniqueServices: len(ranked)}
	if len(ranked) > topServices {
		ranked = ranked[:topServices]
	}
	list.Services = ranked
	return list, nil
}

// Stats returns aggregate statistics over the whole store.
func (s *TemplateService) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	return s.store.Stats(ctx)
}

// Popular ranks all templates by complexity, the coarse AI flag, and node
// count, truncated to the limit.
func (s *TemplateService) Popular(ctx context.Context, limit int) ([]*models.Template, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}
	return s.store.Popular(ctx, limit)
}
