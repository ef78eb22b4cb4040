// Package taxonomy holds the category→keyword table used for heuristic
// categorization and the scoring logic that picks a category for a workflow.
package taxonomy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"workflow-templates/backend/pkg/models"
)

// General is the reserved catch-all category. It carries no keywords and is
// never scored; it is the result whenever nothing else matches.
const General = "General"

// Category is one named category with its ordered keyword list.
type Category struct {
	Name     string
	Keywords []string
}

// Taxonomy is an ordered category table. Order is significant: when two
// categories score equally, the earlier one wins.
type Taxonomy struct {
	categories []Category
}

// New builds a taxonomy from an explicit ordered category list.
func New(categories []Category) *Taxonomy {
	return &Taxonomy{categories: categories}
}

// Default returns the built-in category table used when no external mapping
// is configured.
func Default() *Taxonomy {
	return New([]Category{
		{"AI Agent Development", []string{"ai", "openai", "gpt", "llm", "anthropic", "claude", "langchain", "agent", "chatbot"}},
		{"Marketing & Advertising Automation", []string{"mailchimp", "hubspot", "sendgrid", "campaign", "marketing", "advertising"}},
		{"Technical Infrastructure & DevOps", []string{"github", "gitlab", "jenkins", "docker", "kubernetes", "aws", "devops"}},
		{"Communication & Messaging", []string{"slack", "email", "discord", "telegram", "teams", "sms", "communication"}},
		{"Cloud Storage & File Management", []string{"s3", "drive", "dropbox", "storage", "file", "backup"}},
		{"Project Management", []string{"notion", "airtable", "trello", "asana", "todoist", "project", "task"}},
		{"CRM & Sales", []string{"salesforce", "hubspot", "pipedrive", "crm", "sales", "customer"}},
		{"Data Processing & Analysis", []string{"database", "postgres", "mysql", "mongodb", "transform", "analytics"}},
		{"Financial & Accounting", []string{"stripe", "paypal", "quickbooks", "financial", "accounting", "payment"}},
		{"Web Scraping & Data Extraction", []string{"http", "webhook", "scraping", "extraction", "api", "rss"}},
		{"E-commerce & Retail", []string{"shopify", "woocommerce", "stripe", "square", "ecommerce", "retail"}},
		{"Business Process Automation", []string{"automation", "process", "workflow", "trigger", "schedule"}},
		{"Content Management & Publishing", []string{"wordpress", "ghost", "medium", "content", "publishing", "blog"}},
		{"Social Media Management", []string{"facebook", "twitter", "instagram", "linkedin", "social", "media"}},
		{General, nil},
	})
}

// Load reads a category mapping from a JSON file. Object key order in the
// file is preserved so it can serve as the tie-break order. An empty path
// returns the built-in table.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	categories, err := parseOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	return New(categories), nil
}

// parseOrdered decodes a {"category": ["keyword", ...]} object while keeping
// the order of its keys, which encoding/json maps would discard.
func parseOrdered(data []byte) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var categories []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)
		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		categories = append(categories, Category{Name: name, Keywords: keywords})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return categories, nil
}

// Categories returns the ordered category list.
func (t *Taxonomy) Categories() []Category {
	return t.categories
}

// Categorize scores every non-General category against the extracted service
// names and node type identifiers and returns the best match. A keyword found
// in the service text scores 10, in the node type text 5, anywhere in the
// combined text 1. Categories with zero score are excluded; on equal scores
// the category listed first wins. With no scoring category at all the result
// is General.
func (t *Taxonomy) Categorize(services []string, nodes []models.Node) string {
	var serviceParts, nodeParts []string
	for _, s := range services {
		serviceParts = append(serviceParts, strings.ToLower(s))
	}
	for _, n := range nodes {
		nodeParts = append(nodeParts, strings.ToLower(n.Type))
	}
	servicesText := strings.Join(serviceParts, " ")
	nodesText := strings.Join(nodeParts, " ")
	allText := servicesText + " " + nodesText

	best := General
	bestScore := 0
	for _, cat := range t.categories {
		if cat.Name == General {
			continue
		}
		score := 0
		for _, keyword := range cat.Keywords {
			kw := strings.ToLower(keyword)
			switch {
			case strings.Contains(servicesText, kw):
				score += 10
			case strings.Contains(nodesText, kw):
				score += 5
			case strings.Contains(allText, kw):
				score++
			}
		}
		if score > bestScore {
			best = cat.Name
			bestScore = score
		}
	}
	return best
}
