// Package extract derives descriptive metadata from workflow definitions.
// Everything here is pure: the same definition, filename, and taxonomy always
// produce the same record.
package extract

import (
	"path/filepath"
	"strings"

	"workflow-templates/backend/internal/taxonomy"
	"workflow-templates/backend/pkg/models"
)

// aiKeywords is the curated vocabulary used to detect AI-related workflows
// during complexity classification.
var aiKeywords = []string{"ai", "openai", "gpt", "llm", "claude", "anthropic", "langchain"}

// acronyms are filename tokens kept fully upper-cased during name generation.
var acronyms = map[string]bool{
	"api": true, "ai": true, "crm": true, "sms": true,
	"rss": true, "http": true, "aws": true,
}

// Metadata is the derived descriptive record for one workflow definition.
// The ingestion pipeline supplies the id and content fingerprint.
type Metadata struct {
	Name        string
	Description string
	Category    string
	NodesCount  int
	Services    []string
	TriggerType models.TriggerType
	Complexity  models.Complexity
	UseCases    []string
}

// Extractor turns workflow definitions into metadata records using the given
// taxonomy for categorization.
type Extractor struct {
	taxonomy *taxonomy.Taxonomy
}

// New creates an Extractor.
func New(tax *taxonomy.Taxonomy) *Extractor {
	return &Extractor{taxonomy: tax}
}

// Extract derives the full metadata record for a workflow definition read
// from the named file.
func (e *Extractor) Extract(wf *models.Workflow, filename string) Metadata {
	services := ExtractServices(wf.Nodes)
	trigger := DetectTriggerType(wf.Nodes)

	nodeCount := len(wf.Nodes)
	hasCode := anyNodeTypeContains(wf.Nodes, "code")
	hasAI := hasAISignals(wf.Nodes)
	hasWebhook := trigger == models.TriggerWebhook

	complexity := ClassifyComplexity(nodeCount, hasCode, hasAI, hasWebhook)

	return Metadata{
		Name:        GenerateName(wf, filename, services, trigger),
		Description: generateDescription(wf, services, trigger, hasAI),
		Category:    e.taxonomy.Categorize(services, wf.Nodes),
		NodesCount:  nodeCount,
		Services:    services,
		TriggerType: trigger,
		Complexity:  complexity,
		UseCases:    generateUseCases(trigger, hasAI, hasCode, hasWebhook, len(services)),
	}
}

// ExtractServices derives human-readable service names from node type
// identifiers. The namespace prefix is dropped, hyphenated tokens are
// title-cased, a couple of well-known identifiers get canonical names, and a
// "Trigger" suffix is stripped ("slackTrigger" yields "Slack"). Duplicates
// collapse; the result preserves first-seen order.
func ExtractServices(nodes []models.Node) []string {
	var services []string
	seen := map[string]bool{}
	for _, node := range nodes {
		if node.Type == "" {
			continue
		}
		ident := node.Type
		if idx := strings.LastIndex(ident, "."); idx >= 0 {
			ident = ident[idx+1:]
		}

		service := titleWords(strings.ReplaceAll(ident, "-", " "))

		switch {
		case strings.EqualFold(service, "httprequest"):
			service = "HTTP Request"
		case strings.EqualFold(service, "webhook"):
			service = "Webhook"
		case strings.Contains(service, "Trigger") && service != "Trigger":
			service = strings.TrimSpace(strings.ReplaceAll(service, "Trigger", ""))
		}

		if service != "" && !seen[service] {
			seen[service] = true
			services = append(services, service)
		}
	}
	return services
}

// DetectTriggerType scans nodes in definition order and returns on the first
// node matching a trigger rule. Because this is a first-match scan, node
// order decides the outcome when several trigger-like nodes are present.
func DetectTriggerType(nodes []models.Node) models.TriggerType {
	for _, node := range nodes {
		nodeType := strings.ToLower(node.Type)
		switch {
		case strings.Contains(nodeType, "webhook"):
			return models.TriggerWebhook
		case strings.Contains(nodeType, "schedule"), strings.Contains(nodeType, "cron"):
			return models.TriggerSchedule
		case strings.Contains(nodeType, "trigger"):
			if strings.Contains(nodeType, "manual") {
				return models.TriggerManual
			}
			if strings.Contains(nodeType, "interval") {
				return models.TriggerSchedule
			}
			return models.TriggerComplex
		}
	}
	return models.TriggerManual
}

// ClassifyComplexity applies the ordered complexity rules; the first matching
// rule wins.
func ClassifyComplexity(nodeCount int, hasCode, hasAI, hasWebhook bool) models.Complexity {
	switch {
	case nodeCount > 15 || (hasAI && nodeCount > 5):
		return models.ComplexityAdvanced
	case nodeCount > 8 || hasCode || hasAI || (hasWebhook && nodeCount > 3):
		return models.ComplexityIntermediate
	default:
		return models.ComplexitySimple
	}
}

// GenerateName produces a display name for the workflow. Priority: the
// definition's own name, then a parse of structured filenames like
// 123_Slack_Backup_Scheduled.json, then the extracted services, then the
// bare filename.
func GenerateName(wf *models.Workflow, filename string, services []string, trigger models.TriggerType) string {
	if name := strings.TrimSpace(wf.Name); name != "" {
		return name
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")
	if len(parts) >= 3 {
		if isNumeric(parts[0]) {
			parts = parts[1:]
		}
		named := make([]string, 0, len(parts))
		for _, part := range parts {
			if acronyms[strings.ToLower(part)] {
				named = append(named, strings.ToUpper(part))
			} else {
				named = append(named, titleWords(part))
			}
		}
		return strings.Join(named, " ")
	}

	if len(services) > 0 {
		picked := services
		if len(picked) > 2 {
			picked = picked[:2]
		}
		name := strings.Join(picked, " & ")
		if trigger != models.TriggerManual {
			return name + " " + titleWords(string(trigger)) + " Automation"
		}
		return name + " Workflow"
	}

	return titleWords(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}

// generateDescription keeps an explicit description when present, otherwise
// builds one from the services and trigger type. Without services the
// description stays empty.
func generateDescription(wf *models.Workflow, services []string, trigger models.TriggerType, hasAI bool) string {
	if desc := strings.TrimSpace(wf.Description); desc != "" {
		return desc
	}
	if len(services) == 0 {
		return ""
	}

	picked := services
	if len(picked) > 3 {
		picked = picked[:3]
	}
	joined := strings.Join(picked, ", ")

	var desc string
	switch trigger {
	case models.TriggerWebhook:
		desc = "Real-time automation connecting " + joined + " via webhook triggers"
	case models.TriggerSchedule:
		desc = "Scheduled automation workflow for " + joined + " integration"
	default:
		desc = "Workflow automation connecting " + joined
	}
	if hasAI {
		desc += " with AI-powered processing"
	}
	return desc
}

// generateUseCases appends descriptive tags in a fixed order; manual triggers
// contribute no trigger tag.
func generateUseCases(trigger models.TriggerType, hasAI, hasCode, hasWebhook bool, serviceCount int) []string {
	var useCases []string
	switch trigger {
	case models.TriggerWebhook:
		useCases = append(useCases, "Real-time event processing")
	case models.TriggerSchedule:
		useCases = append(useCases, "Automated recurring tasks")
	case models.TriggerComplex:
		useCases = append(useCases, "Complex workflow automation")
	}
	if hasAI {
		useCases = append(useCases, "AI-powered automation")
	}
	if hasCode {
		useCases = append(useCases, "Custom data transformation")
	}
	if serviceCount > 3 {
		useCases = append(useCases, "Multi-service integration")
	}
	if hasWebhook && hasAI {
		useCases = append(useCases, "Intelligent real-time processing")
	}
	return useCases
}

// hasAISignals reports whether any node's full serialized content mentions
// one of the AI vocabulary keywords.
func hasAISignals(nodes []models.Node) bool {
	for _, node := range nodes {
		content := strings.ToLower(string(node.Raw()))
		for _, keyword := range aiKeywords {
			if strings.Contains(content, keyword) {
				return true
			}
		}
	}
	return false
}

func anyNodeTypeContains(nodes []models.Node, substr string) bool {
	for _, node := range nodes {
		if strings.Contains(strings.ToLower(node.Type), substr) {
			return true
		}
	}
	return false
}

// titleWords upper-cases the first rune of every space-separated token,
// leaving the rest of each token untouched so camel-cased identifiers keep
// their inner capitals ("slackTrigger" -> "SlackTrigger").
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
