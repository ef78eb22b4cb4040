package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-templates/backend/internal/repository"
	"workflow-templates/backend/pkg/models"
)

func seedStore(t *testing.T) repository.TemplateStore {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryTemplateStore()

	templates := []*models.Template{
		{
			ID: "small", Name: "Small Flow", Category: "General",
			NodesCount: 2, TriggerType: models.TriggerManual,
			Complexity: models.ComplexitySimple,
			Services:   []string{"Slack"},
			RawDefinition: []byte(`{"nodes": [{"type": "vendor.slack"}], "connections": {}}`),
		},
		{
			ID: "medium", Name: "Medium Flow", Category: "Communication & Messaging",
			NodesCount: 9, TriggerType: models.TriggerWebhook,
			Complexity: models.ComplexityIntermediate,
			Services:   []string{"Slack", "Webhook"},
			RawDefinition: []byte(`{"nodes": [{"type": "vendor.webhook"}], "connections": {}}`),
		},
		{
			ID: "large", Name: "Large Flow", Category: "Communication & Messaging",
			NodesCount: 20, TriggerType: models.TriggerWebhook,
			Complexity: models.ComplexityAdvanced,
			Services:   []string{"Slack", "Notion"},
			RawDefinition: []byte(`{"nodes": [{"type": "vendor.openai"}], "connections": {}}`),
		},
	}
	for _, tmpl := range templates {
		require.NoError(t, store.Upsert(ctx, tmpl))
	}
	return store
}

func TestSearchOrdering(t *testing.T) {
	svc := NewTemplateService(seedStore(t))

	results, err := svc.Search(context.Background(), models.SearchRequest{Query: ""})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{20, 9, 2}, []int{results[0].NodesCount, results[1].NodesCount, results[2].NodesCount})
}

func TestSearchFilters(t *testing.T) {
	svc := NewTemplateService(seedStore(t))
	ctx := context.Background()

	t.Run("category filter", func(t *testing.T) {
		results, err := svc.Search(ctx, models.SearchRequest{Category: "Communication & Messaging"})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("trigger filter intersects", func(t *testing.T) {
		results, err := svc.Search(ctx, models.SearchRequest{Category: "General", TriggerType: "webhook"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("limit truncates", func(t *testing.T) {
		results, err := svc.Search(ctx, models.SearchRequest{Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "large", results[0].ID)
	})

	t.Run("whitespace query is filter-only", func(t *testing.T) {
		results, err := svc.Search(ctx, models.SearchRequest{Query: "   "})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTemplateStore()
	require.NoError(t, store.Upsert(ctx, &models.Template{
		ID:   "wf",
		Name: "Flow",
		RawDefinition: []byte(`{
			"nodes": [
				{"type": "vendor.webhook"},
				{"type": "vendor.slack"},
				{"type": "vendor.slack"}
			],
			"connections": {
				"Webhook": [{"node": "Slack"}, {"node": "Slack2"}],
				"Slack": [{"node": "Slack2"}]
			}
		}`),
	}))
	svc := NewTemplateService(store)

	detail, err := svc.GetByID(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "wf", detail.ID)
	assert.Equal(t, 3, detail.Statistics["total_nodes"])
	assert.Equal(t, 3, detail.Statistics["connection_count"])
	assert.Equal(t, 2, detail.Statistics["unique_node_types"])
	assert.Equal(t, 2, detail.Statistics["vendor.slack"])
	assert.Equal(t, 1, detail.Statistics["vendor.webhook"])
	assert.Len(t, detail.Nodes, 3)
}

func TestGetByIDPortKeyedConnections(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTemplateStore()
	require.NoError(t, store.Upsert(ctx, &models.Template{
		ID: "wf",
		RawDefinition: []byte(`{
			"nodes": [{"type": "vendor.webhook"}, {"type": "vendor.slack"}],
			"connections": {
				"Webhook": {"main": [[{"node": "Slack", "index": 0}]]},
				"Slack": {}
			}
		}`),
	}))
	svc := NewTemplateService(store)

	detail, err := svc.GetByID(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Statistics["connection_count"])
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewTemplateService(repository.NewMemoryTemplateStore())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListServices(t *testing.T) {
	svc := NewTemplateService(seedStore(t))

	list, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalUniqueServices)
	require.NotEmpty(t, list.Services)
	assert.Equal(t, models.NamedCount{Name: "Slack", Count: 3}, list.Services[0])
}

func TestListServicesTopFifty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTemplateStore()
	for i := 0; i < 60; i++ {
		require.NoError(t, store.Upsert(ctx, &models.Template{
			ID:       fmt.Sprintf("wf-%d", i),
			Services: []string{fmt.Sprintf("Service%02d", i)},
		}))
	}
	svc := NewTemplateService(store)

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, list.TotalUniqueServices)
	assert.Len(t, list.Services, 50)
}

func TestStats(t *testing.T) {
	svc := NewTemplateService(seedStore(t))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalWorkflows)
	assert.Equal(t, 31, stats.TotalNodes)
	assert.InDelta(t, 10.3, stats.AverageNodesPerWorkflow, 0.001)

	levels := make([]string, 0, len(stats.Complexity))
	for _, c := range stats.Complexity {
		levels = append(levels, c.Level)
	}
	assert.Equal(t, []string{"simple", "intermediate", "advanced"}, levels)
}

func TestPopularRanking(t *testing.T) {
	svc := NewTemplateService(seedStore(t))

	results, err := svc.Popular(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// advanced first, then intermediate, then simple.
	assert.Equal(t, "large", results[0].ID)
	assert.Equal(t, "medium", results[1].ID)
	assert.Equal(t, "small", results[2].ID)
}

func TestPopularLimitCeiling(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTemplateStore()
	for i := 0; i < 60; i++ {
		require.NoError(t, store.Upsert(ctx, &models.Template{ID: fmt.Sprintf("wf-%d", i)}))
	}
	svc := NewTemplateService(store)

	results, err := svc.Popular(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, results, MaxPopularLimit)
}
