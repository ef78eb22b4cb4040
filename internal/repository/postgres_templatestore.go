package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-templates/backend/pkg/models"
)

const templateColumns = `id, name, description, category, nodes_count, services,
	trigger_type, complexity, use_cases, raw_definition, file_hash, created_at, updated_at`

// PostgresTemplateStore is a PostgreSQL implementation of the TemplateStore
// interface. The full-text index lives in a generated tsvector column, so it
// is updated in the same transaction as every row write.
type PostgresTemplateStore struct {
	db *pgxpool.Pool
}

// NewPostgresTemplateStore creates a new PostgresTemplateStore.
func NewPostgresTemplateStore(db *pgxpool.Pool) *PostgresTemplateStore {
	return &PostgresTemplateStore{db: db}
}

// Initialize applies the schema migrations. Idempotent.
func (s *PostgresTemplateStore) Initialize(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Upsert inserts the template or fully replaces the record with the same id.
// A single statement, so readers never see a partially updated row.
func (s *PostgresTemplateStore) Upsert(ctx context.Context, tmpl *models.Template) error {
	services, err := json.Marshal(emptyIfNil(tmpl.Services))
	if err != nil {
		return fmt.Errorf("marshal services: %w", err)
	}
	useCases, err := json.Marshal(emptyIfNil(tmpl.UseCases))
	if err != nil {
		return fmt.Errorf("marshal use cases: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO templates (id, name, description, category, nodes_count, services,
			trigger_type, complexity, use_cases, raw_definition, file_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			nodes_count = EXCLUDED.nodes_count,
			services = EXCLUDED.services,
			trigger_type = EXCLUDED.trigger_type,
			complexity = EXCLUDED.complexity,
			use_cases = EXCLUDED.use_cases,
			raw_definition = EXCLUDED.raw_definition,
			file_hash = EXCLUDED.file_hash,
			updated_at = now()`,
		tmpl.ID, tmpl.Name, tmpl.Description, tmpl.Category, tmpl.NodesCount,
		string(services), string(tmpl.TriggerType), string(tmpl.Complexity),
		string(useCases), string(tmpl.RawDefinition), tmpl.FileHash,
	)
	return err
}

// Get retrieves a template by id.
func (s *PostgresTemplateStore) Get(ctx context.Context, id string) (*models.Template, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+templateColumns+" FROM templates WHERE id = $1", id)
	return scanTemplate(row)
}

// GetFileHash returns the stored content fingerprint for an id.
func (s *PostgresTemplateStore) GetFileHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRow(ctx, "SELECT file_hash FROM templates WHERE id = $1", id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// Search runs a free-text plus filtered query. A blank or whitespace-only
// query selects by filters alone; results are ordered by node count
// descending.
func (s *PostgresTemplateStore) Search(ctx context.Context, req models.SearchRequest) ([]*models.Template, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+templateColumns+` FROM templates
		WHERE (btrim($1) = '' OR search_vector @@ plainto_tsquery('english', $1))
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR trigger_type = $3)
		ORDER BY nodes_count DESC
		LIMIT $4`,
		req.Query, req.Category, req.TriggerType, req.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// ListCategories returns distinct categories with counts, descending.
func (s *PostgresTemplateStore) ListCategories(ctx context.Context) ([]models.NamedCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, COUNT(*) FROM templates
		GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.NamedCount
	for rows.Next() {
		var c models.NamedCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ListTriggerTypes returns distinct trigger types with counts, descending.
func (s *PostgresTemplateStore) ListTriggerTypes(ctx context.Context) ([]models.TriggerCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT trigger_type, COUNT(*) FROM templates
		GROUP BY trigger_type ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.TriggerCount
	for rows.Next() {
		var c models.TriggerCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ListServiceSets returns every record's service set.
func (s *PostgresTemplateStore) ListServiceSets(ctx context.Context) ([][]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT services FROM templates WHERE services <> '[]'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var services []string
		if err := json.Unmarshal([]byte(raw), &services); err != nil {
			continue
		}
		sets = append(sets, services)
	}
	return sets, rows.Err()
}

// Stats returns aggregate statistics over the whole store.
func (s *PostgresTemplateStore) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	stats := &models.DatabaseStats{}

	var avg *float64
	var sum *int64
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*), SUM(nodes_count), AVG(nodes_count) FROM templates").
		Scan(&stats.TotalWorkflows, &sum, &avg)
	if err != nil {
		return nil, err
	}
	if sum != nil {
		stats.TotalNodes = int(*sum)
	}
	if avg != nil {
		stats.AverageNodesPerWorkflow = math.Round(*avg*10) / 10
	}

	if stats.Categories, err = s.ListCategories(ctx); err != nil {
		return nil, err
	}
	if stats.TriggerTypes, err = s.ListTriggerTypes(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT complexity, COUNT(*) FROM templates
		GROUP BY complexity
		ORDER BY CASE complexity
			WHEN 'simple' THEN 1
			WHEN 'intermediate' THEN 2
			WHEN 'advanced' THEN 3
		END`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.ComplexityCount
		if err := rows.Scan(&c.Level, &c.Count); err != nil {
			return nil, err
		}
		stats.Complexity = append(stats.Complexity, c)
	}
	return stats, rows.Err()
}

// Popular ranks templates by complexity rank, then a coarse AI-likelihood
// flag over the serialized definition, then node count, all descending. The
// AI flag is a blunt substring test and can match unrelated text.
func (s *PostgresTemplateStore) Popular(ctx context.Context, limit int) ([]*models.Template, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+templateColumns+` FROM templates
		ORDER BY
			CASE complexity
				WHEN 'advanced' THEN 3
				WHEN 'intermediate' THEN 2
				ELSE 1
			END DESC,
			CASE WHEN lower(raw_definition) LIKE '%ai%'
				OR lower(raw_definition) LIKE '%openai%'
				OR lower(raw_definition) LIKE '%gpt%' THEN 1 ELSE 0 END DESC,
			nodes_count DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// Count returns the number of stored templates.
func (s *PostgresTemplateStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM templates").Scan(&count)
	return count, err
}

func scanTemplates(rows pgx.Rows) ([]*models.Template, error) {
	var templates []*models.Template
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var tmpl models.Template
	var services, useCases, rawDefinition, triggerType, complexity string
	var createdAt, updatedAt time.Time
	err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.Category,
		&tmpl.NodesCount, &services, &triggerType, &complexity, &useCases,
		&rawDefinition, &tmpl.FileHash, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tmpl.TriggerType = models.TriggerType(triggerType)
	tmpl.Complexity = models.Complexity(complexity)
	tmpl.RawDefinition = []byte(rawDefinition)
	tmpl.CreatedAt = createdAt
	tmpl.UpdatedAt = updatedAt
	if err := json.Unmarshal([]byte(services), &tmpl.Services); err != nil {
		return nil, fmt.Errorf("unmarshal services for %s: %w", tmpl.ID, err)
	}
	if err := json.Unmarshal([]byte(useCases), &tmpl.UseCases); err != nil {
		return nil, fmt.Errorf("unmarshal use cases for %s: %w", tmpl.ID, err)
	}
	return &tmpl, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
