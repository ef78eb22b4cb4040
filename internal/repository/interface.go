// Package repository implements the template store: a keyed table of
// extracted records with a synchronized full-text index over their
// descriptive fields.
package repository

import (
	"context"
	"errors"

	"workflow-templates/backend/pkg/models"
)

// ErrNotFound is returned when a template id is absent from the store. It is
// the only structured error the read path raises.
var ErrNotFound = errors.New("template not found")

// TemplateStore is the interface for storing and querying extracted workflow
// template records. Writes happen from a single ingestion batch at a time;
// reads may run concurrently and always observe fully committed records.
type TemplateStore interface {
	// Initialize sets up the schema and indexes. Idempotent.
	Initialize(ctx context.Context) error
	// Upsert inserts the template or fully replaces an existing record with
	// the same id, atomically from the reader's perspective.
	Upsert(ctx context.Context, tmpl *models.Template) error
	// Get retrieves a template by id.
	Get(ctx context.Context, id string) (*models.Template, error)
	// GetFileHash returns the stored content fingerprint for an id.
	GetFileHash(ctx context.Context, id string) (string, error)
	// Search runs a free-text plus filtered query, ordered by nodes_count
	// descending. A blank query selects by filters alone.
	Search(ctx context.Context, req models.SearchRequest) ([]*models.Template, error)
	// ListCategories returns distinct categories with counts, descending.
	ListCategories(ctx context.Context) ([]models.NamedCount, error)
	// ListTriggerTypes returns distinct trigger types with counts, descending.
	ListTriggerTypes(ctx context.Context) ([]models.TriggerCount, error)
	// ListServiceSets returns every record's service set for aggregation.
	ListServiceSets(ctx context.Context) ([][]string, error)
	// Stats returns aggregate statistics over the whole store.
	Stats(ctx context.Context) (*models.DatabaseStats, error)
	// Popular ranks templates by complexity, a coarse AI flag over the
	// serialized definition, and node count, all descending.
	Popular(ctx context.Context, limit int) ([]*models.Template, error)
	// Count returns the number of stored templates.
	Count(ctx context.Context) (int, error)
}
