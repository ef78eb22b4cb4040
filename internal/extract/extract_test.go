package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-templates/backend/internal/taxonomy"
	"workflow-templates/backend/pkg/models"
)

func nodes(types ...string) []models.Node {
	out := make([]models.Node, len(types))
	for i, t := range types {
		out[i] = models.NewNode(t)
	}
	return out
}

func TestExtractServices(t *testing.T) {
	t.Run("namespace suffix and trigger strip", func(t *testing.T) {
		services := ExtractServices(nodes("vendor.webhook", "vendor.slackTrigger"))
		assert.Equal(t, []string{"Webhook", "Slack"}, services)
	})

	t.Run("httprequest rename", func(t *testing.T) {
		services := ExtractServices(nodes("n8n-nodes-base.httpRequest"))
		assert.Equal(t, []string{"HTTP Request"}, services)
	})

	t.Run("hyphenated tokens title cased", func(t *testing.T) {
		services := ExtractServices(nodes("n8n-nodes-base.google-sheets"))
		assert.Equal(t, []string{"Google Sheets"}, services)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		services := ExtractServices(nodes("vendor.slack", "vendor.slack", "other.slack"))
		assert.Equal(t, []string{"Slack"}, services)
	})

	t.Run("bare trigger keeps its name", func(t *testing.T) {
		services := ExtractServices(nodes("vendor.trigger"))
		assert.Equal(t, []string{"Trigger"}, services)
	})

	t.Run("empty types skipped", func(t *testing.T) {
		assert.Empty(t, ExtractServices(nodes("")))
	})
}

func TestDetectTriggerType(t *testing.T) {
	t.Run("first match in node order wins", func(t *testing.T) {
		trigger := DetectTriggerType(nodes("n8n-nodes-base.scheduleTrigger", "n8n-nodes-base.webhook"))
		assert.Equal(t, models.TriggerSchedule, trigger)
	})

	t.Run("webhook", func(t *testing.T) {
		assert.Equal(t, models.TriggerWebhook, DetectTriggerType(nodes("vendor.set", "vendor.webhook")))
	})

	t.Run("cron counts as schedule", func(t *testing.T) {
		assert.Equal(t, models.TriggerSchedule, DetectTriggerType(nodes("vendor.cron")))
	})

	t.Run("manual trigger", func(t *testing.T) {
		assert.Equal(t, models.TriggerManual, DetectTriggerType(nodes("vendor.manualTrigger")))
	})

	t.Run("interval trigger counts as schedule", func(t *testing.T) {
		assert.Equal(t, models.TriggerSchedule, DetectTriggerType(nodes("vendor.intervalTrigger")))
	})

	t.Run("other triggers are complex", func(t *testing.T) {
		assert.Equal(t, models.TriggerComplex, DetectTriggerType(nodes("vendor.slackTrigger")))
	})

	t.Run("no trigger defaults to manual", func(t *testing.T) {
		assert.Equal(t, models.TriggerManual, DetectTriggerType(nodes("vendor.set", "vendor.noOp")))
	})
}

func TestClassifyComplexity(t *testing.T) {
	tests := []struct {
		name       string
		nodeCount  int
		hasCode    bool
		hasAI      bool
		hasWebhook bool
		want       models.Complexity
	}{
		{"8 nodes no signals", 8, false, false, false, models.ComplexitySimple},
		{"9 nodes no signals", 9, false, false, false, models.ComplexityIntermediate},
		{"15 nodes no signals", 15, false, false, false, models.ComplexityIntermediate},
		{"16 nodes no signals", 16, false, false, false, models.ComplexityAdvanced},
		{"ai with 6 nodes", 6, false, true, false, models.ComplexityAdvanced},
		{"ai with 5 nodes", 5, false, true, false, models.ComplexityIntermediate},
		{"code node", 2, true, false, false, models.ComplexityIntermediate},
		{"webhook with 4 nodes", 4, false, false, true, models.ComplexityIntermediate},
		{"webhook with 3 nodes", 3, false, false, true, models.ComplexitySimple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyComplexity(tt.nodeCount, tt.hasCode, tt.hasAI, tt.hasWebhook)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateName(t *testing.T) {
	t.Run("explicit name wins", func(t *testing.T) {
		wf := &models.Workflow{Name: "  My Flow  "}
		assert.Equal(t, "My Flow", GenerateName(wf, "x.json", nil, models.TriggerManual))
	})

	t.Run("structured filename", func(t *testing.T) {
		name := GenerateName(&models.Workflow{}, "123_Slack_Backup_Scheduled.json", nil, models.TriggerSchedule)
		assert.Equal(t, "Slack Backup Scheduled", name)
	})

	t.Run("acronyms upper cased", func(t *testing.T) {
		name := GenerateName(&models.Workflow{}, "2051_Telegram_ai_Bot_webhook.json", nil, models.TriggerWebhook)
		assert.Equal(t, "Telegram AI Bot Webhook", name)
	})

	t.Run("services with non-manual trigger", func(t *testing.T) {
		name := GenerateName(&models.Workflow{}, "flow.json", []string{"Slack", "Sheets", "Drive"}, models.TriggerWebhook)
		assert.Equal(t, "Slack & Sheets Webhook Automation", name)
	})

	t.Run("services with manual trigger", func(t *testing.T) {
		name := GenerateName(&models.Workflow{}, "flow.json", []string{"Slack"}, models.TriggerManual)
		assert.Equal(t, "Slack Workflow", name)
	})

	t.Run("filename fallback", func(t *testing.T) {
		name := GenerateName(&models.Workflow{}, "my-daily_flow.json", nil, models.TriggerManual)
		assert.Equal(t, "My Daily Flow", name)
	})
}

func TestExtract(t *testing.T) {
	ext := New(taxonomy.Default())

	t.Run("slack webhook workflow", func(t *testing.T) {
		raw := []byte(`{
			"nodes": [
				{"type": "n8n-nodes-base.webhook", "name": "Webhook"},
				{"type": "n8n-nodes-base.slack", "name": "Slack"},
				{"type": "n8n-nodes-base.code", "name": "Code"}
			],
			"connections": {"Webhook": [{"node": "Slack"}]}
		}`)
		wf, err := models.ParseWorkflow(raw)
		require.NoError(t, err)

		meta := ext.Extract(wf, "flow.json")
		assert.Equal(t, models.TriggerWebhook, meta.TriggerType)
		assert.Equal(t, models.ComplexityIntermediate, meta.Complexity)
		assert.Equal(t, 3, meta.NodesCount)
		assert.Equal(t, []string{"Webhook", "Slack", "Code"}, meta.Services)
		assert.Equal(t, "Communication & Messaging", meta.Category)
		assert.Equal(t, "Real-time automation connecting Webhook, Slack, Code via webhook triggers", meta.Description)
		assert.Contains(t, meta.UseCases, "Real-time event processing")
		assert.Contains(t, meta.UseCases, "Custom data transformation")
	})

	t.Run("ai signal from node parameters", func(t *testing.T) {
		raw := []byte(`{
			"nodes": [
				{"type": "vendor.webhook"},
				{"type": "vendor.set", "parameters": {"model": "gpt-4"}}
			],
			"connections": {}
		}`)
		wf, err := models.ParseWorkflow(raw)
		require.NoError(t, err)

		meta := ext.Extract(wf, "flow.json")
		assert.Equal(t, models.ComplexityIntermediate, meta.Complexity)
		assert.Contains(t, meta.UseCases, "AI-powered automation")
		assert.Contains(t, meta.UseCases, "Intelligent real-time processing")
		assert.Contains(t, meta.Description, "with AI-powered processing")
	})

	t.Run("use case ordering", func(t *testing.T) {
		raw := []byte(`{
			"nodes": [
				{"type": "vendor.webhook"},
				{"type": "vendor.code", "parameters": {"provider": "openai"}},
				{"type": "vendor.slack"},
				{"type": "vendor.notion"},
				{"type": "vendor.github"}
			],
			"connections": {}
		}`)
		wf, err := models.ParseWorkflow(raw)
		require.NoError(t, err)

		meta := ext.Extract(wf, "flow.json")
		assert.Equal(t, []string{
			"Real-time event processing",
			"AI-powered automation",
			"Custom data transformation",
			"Multi-service integration",
			"Intelligent real-time processing",
		}, meta.UseCases)
	})

	t.Run("no services leaves description empty", func(t *testing.T) {
		raw := []byte(`{"nodes": [], "connections": {}}`)
		wf, err := models.ParseWorkflow(raw)
		require.NoError(t, err)

		meta := ext.Extract(wf, "simple.json")
		assert.Empty(t, meta.Description)
		assert.Equal(t, models.TriggerManual, meta.TriggerType)
		assert.Equal(t, models.ComplexitySimple, meta.Complexity)
		assert.Equal(t, "General", meta.Category)
	})
}
