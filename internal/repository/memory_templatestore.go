package repository

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"workflow-templates/backend/pkg/models"
)

// MemoryTemplateStore is an in-memory implementation of the TemplateStore
// interface. It backs the dev-mode server and isolated unit tests; the text
// index degrades to case-insensitive substring matching over the same fields
// the Postgres store indexes.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

// NewMemoryTemplateStore creates an empty in-memory store.
func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]*models.Template)}
}

// Initialize is a no-op; there is no schema to set up.
func (s *MemoryTemplateStore) Initialize(context.Context) error {
	return nil
}

// Upsert inserts or fully replaces the record under the template's id.
func (s *MemoryTemplateStore) Upsert(_ context.Context, tmpl *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *tmpl
	now := time.Now()
	if existing, ok := s.templates[tmpl.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.templates[tmpl.ID] = &stored
	return nil
}

// Get retrieves a template by id.
func (s *MemoryTemplateStore) Get(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *tmpl
	return &copied, nil
}

// GetFileHash returns the stored content fingerprint for an id.
func (s *MemoryTemplateStore) GetFileHash(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[id]
	if !ok {
		return "", ErrNotFound
	}
	return tmpl.FileHash, nil
}

// Search selects by filters, matching every query term against the indexed
// text fields, ordered by node count descending.
func (s *MemoryTemplateStore) Search(_ context.Context, req models.SearchRequest) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Template
	terms := strings.Fields(strings.ToLower(req.Query))
	for _, tmpl := range s.templates {
		if req.Category != "" && tmpl.Category != req.Category {
			continue
		}
		if req.TriggerType != "" && string(tmpl.TriggerType) != req.TriggerType {
			continue
		}
		if len(terms) > 0 && !matchesTerms(tmpl, terms) {
			continue
		}
		copied := *tmpl
		matches = append(matches, &copied)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].NodesCount > matches[j].NodesCount
	})
	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	return matches, nil
}

func matchesTerms(tmpl *models.Template, terms []string) bool {
	text := strings.ToLower(strings.Join([]string{
		tmpl.Name, tmpl.Description,
		strings.Join(tmpl.Services, " "),
		strings.Join(tmpl.UseCases, " "),
	}, " "))
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// ListCategories returns distinct categories with counts, descending.
func (s *MemoryTemplateStore) ListCategories(_ context.Context) ([]models.NamedCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{}
	for _, tmpl := range s.templates {
		counts[tmpl.Category]++
	}
	return sortedNamedCounts(counts), nil
}

// ListTriggerTypes returns distinct trigger types with counts, descending.
func (s *MemoryTemplateStore) ListTriggerTypes(_ context.Context) ([]models.TriggerCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{}
	for _, tmpl := range s.templates {
		counts[string(tmpl.TriggerType)]++
	}
	var out []models.TriggerCount
	for _, c := range sortedNamedCounts(counts) {
		out = append(out, models.TriggerCount{Type: c.Name, Count: c.Count})
	}
	return out, nil
}

// ListServiceSets returns every record's service set.
func (s *MemoryTemplateStore) ListServiceSets(_ context.Context) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sets [][]string
	for _, tmpl := range s.templates {
		if len(tmpl.Services) > 0 {
			sets = append(sets, append([]string(nil), tmpl.Services...))
		}
	}
	return sets, nil
}

// Stats returns aggregate statistics over the whole store.
func (s *MemoryTemplateStore) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	s.mu.RLock()
	totalNodes := 0
	total := len(s.templates)
	complexityCounts := map[models.Complexity]int{}
	for _, tmpl := range s.templates {
		totalNodes += tmpl.NodesCount
		complexityCounts[tmpl.Complexity]++
	}
	s.mu.RUnlock()

	stats := &models.DatabaseStats{
		TotalWorkflows: total,
		TotalNodes:     totalNodes,
	}
	if total > 0 {
		stats.AverageNodesPerWorkflow = math.Round(float64(totalNodes)/float64(total)*10) / 10
	}

	var err error
	if stats.Categories, err = s.ListCategories(ctx); err != nil {
		return nil, err
	}
	if stats.TriggerTypes, err = s.ListTriggerTypes(ctx); err != nil {
		return nil, err
	}
	for _, level := range []models.Complexity{models.ComplexitySimple, models.ComplexityIntermediate, models.ComplexityAdvanced} {
		if count, ok := complexityCounts[level]; ok {
			stats.Complexity = append(stats.Complexity, models.ComplexityCount{Level: string(level), Count: count})
		}
	}
	return stats, nil
}

// Popular ranks templates by complexity rank, the coarse AI substring flag
// over the serialized definition, and node count, all descending.
func (s *MemoryTemplateStore) Popular(_ context.Context, limit int) ([]*models.Template, error) {
	s.mu.RLock()
	all := make([]*models.Template, 0, len(s.templates))
	for _, tmpl := range s.templates {
		copied := *tmpl
		all = append(all, &copied)
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := all[i].Complexity.Rank(), all[j].Complexity.Rank()
		if ri != rj {
			return ri > rj
		}
		ai, aj := aiFlag(all[i].RawDefinition), aiFlag(all[j].RawDefinition)
		if ai != aj {
			return ai > aj
		}
		return all[i].NodesCount > all[j].NodesCount
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func aiFlag(raw []byte) int {
	text := strings.ToLower(string(raw))
	if strings.Contains(text, "ai") || strings.Contains(text, "openai") || strings.Contains(text, "gpt") {
		return 1
	}
	return 0
}

// Count returns the number of stored templates.
func (s *MemoryTemplateStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates), nil
}

func sortedNamedCounts(counts map[string]int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.NamedCount{Name: name, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
