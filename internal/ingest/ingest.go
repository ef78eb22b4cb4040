// Package ingest implements the ingestion pipeline: it walks the templates
// directory, fingerprints each definition, and upserts extracted records into
// the store. One exclusive batch runs at a time.
package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"workflow-templates/backend/internal/extract"
	"workflow-templates/backend/internal/logging"
	"workflow-templates/backend/internal/repository"
	"workflow-templates/backend/pkg/models"
)

// Report summarizes one ingestion batch. Operator visibility only.
type Report struct {
	Imported int
	Updated  int
	Skipped  int
	Failed   int
}

// Pipeline ingests workflow definition files into the template store.
type Pipeline struct {
	dir       string
	extractor *extract.Extractor
	store     repository.TemplateStore
	logger    *logging.Logger
}

// New creates a Pipeline reading definitions from dir.
func New(dir string, extractor *extract.Extractor, store repository.TemplateStore, logger *logging.Logger) *Pipeline {
	return &Pipeline{dir: dir, extractor: extractor, store: store, logger: logger}
}

// Run ingests every .json file under the templates directory. A file whose
// fingerprint matches the stored record is skipped unless forceReindex is
// set. Per-file failures are logged and do not abort the batch. Records are
// never deleted: a source file removed from the directory leaves its record
// behind, which is a known limitation surfaced to operators at startup.
func (p *Pipeline) Run(ctx context.Context, forceReindex bool) (*Report, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read templates directory %s: %w", p.dir, err)
	}

	report := &Report{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := p.ingestFile(ctx, entry.Name(), forceReindex, report); err != nil {
			report.Failed++
			p.logger.Error("Error processing %s: %v", entry.Name(), err)
		}
	}

	p.logger.Info("Ingestion complete: imported=%d updated=%d skipped=%d failed=%d",
		report.Imported, report.Updated, report.Skipped, report.Failed)
	p.logDistributions(ctx)
	return report, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, name string, forceReindex bool, report *Report) error {
	path := filepath.Join(p.dir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	sum := md5.Sum(content)
	fileHash := hex.EncodeToString(sum[:])
	id := strings.TrimSuffix(name, filepath.Ext(name))

	existingHash, err := p.store.GetFileHash(ctx, id)
	exists := true
	if errors.Is(err, repository.ErrNotFound) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("look up fingerprint: %w", err)
	}

	if exists && existingHash == fileHash && !forceReindex {
		report.Skipped++
		return nil
	}

	wf, err := models.ParseWorkflow(content)
	if err != nil {
		return fmt.Errorf("parse workflow: %w", err)
	}

	meta := p.extractor.Extract(wf, name)
	tmpl := &models.Template{
		ID:            id,
		Name:          meta.Name,
		Description:   meta.Description,
		Category:      meta.Category,
		NodesCount:    meta.NodesCount,
		Services:      meta.Services,
		TriggerType:   meta.TriggerType,
		Complexity:    meta.Complexity,
		UseCases:      meta.UseCases,
		FileHash:      fileHash,
		RawDefinition: content,
	}

	if err := p.store.Upsert(ctx, tmpl); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	if exists {
		report.Updated++
	} else {
		report.Imported++
	}
	return nil
}

// logDistributions reports the resulting category, trigger, and complexity
// distributions after a batch.
func (p *Pipeline) logDistributions(ctx context.Context) {
	stats, err := p.store.Stats(ctx)
	if err != nil {
		p.logger.Warn("Could not compute post-ingestion statistics: %v", err)
		return
	}
	p.logger.Info("Total workflows: %d", stats.TotalWorkflows)
	for _, c := range stats.Categories {
		p.logger.Info("Category %s: %d", c.Name, c.Count)
	}
	for _, t := range stats.TriggerTypes {
		p.logger.Info("Trigger %s: %d", t.Type, t.Count)
	}
	for _, c := range stats.Complexity {
		p.logger.Info("Complexity %s: %d", c.Level, c.Count)
	}
}
