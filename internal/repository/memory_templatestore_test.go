package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-templates/backend/pkg/models"
)

func TestMemorySearchRequiresAllTerms(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTemplateStore()
	require.NoError(t, store.Upsert(ctx, &models.Template{
		ID:          "sheets_sync",
		Name:        "Google Sheets Sync",
		Description: "Sync rows into Google Sheets on a schedule",
		Services:    []string{"Google Sheets"},
		NodesCount:  5,
	}))

	results, err := store.Search(ctx, models.SearchRequest{Query: "google sync", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// One matching term is not enough; every term must appear.
	results, err = store.Search(ctx, models.SearchRequest{Query: "sheets quantum", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemorySearchBlankQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTemplateStore()
	require.NoError(t, store.Upsert(ctx, &models.Template{ID: "a", Name: "Alpha", NodesCount: 2}))
	require.NoError(t, store.Upsert(ctx, &models.Template{ID: "b", Name: "Beta", NodesCount: 4}))

	for _, query := range []string{"", "   "} {
		results, err := store.Search(ctx, models.SearchRequest{Query: query, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	}
}
