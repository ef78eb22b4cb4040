package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-templates/backend/pkg/models"
)

func TestCategorize(t *testing.T) {
	tax := Default()

	t.Run("direct service match", func(t *testing.T) {
		category := tax.Categorize([]string{"Slack"}, []models.Node{models.NewNode("vendor.slack")})
		assert.Equal(t, "Communication & Messaging", category)
	})

	t.Run("no match falls back to General", func(t *testing.T) {
		category := tax.Categorize(nil, []models.Node{models.NewNode("vendor.zzz")})
		assert.Equal(t, General, category)
	})

	t.Run("empty input is General", func(t *testing.T) {
		assert.Equal(t, General, tax.Categorize(nil, nil))
	})

	t.Run("service match outscores node match", func(t *testing.T) {
		// "slack" appears as a service, "github" only in a node type.
		category := tax.Categorize([]string{"Slack"}, []models.Node{models.NewNode("vendor.github")})
		assert.Equal(t, "Communication & Messaging", category)
	})

	t.Run("tie broken by listed order", func(t *testing.T) {
		tax := New([]Category{
			{"First", []string{"alpha"}},
			{"Second", []string{"alpha"}},
		})
		category := tax.Categorize([]string{"Alpha"}, nil)
		assert.Equal(t, "First", category)
	})
}

func TestDefault(t *testing.T) {
	tax := Default()
	assert.Len(t, tax.Categories(), 15)
	last := tax.Categories()[len(tax.Categories())-1]
	assert.Equal(t, General, last.Name)
	assert.Empty(t, last.Keywords)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses built-in table", func(t *testing.T) {
		tax, err := Load("")
		require.NoError(t, err)
		assert.Len(t, tax.Categories(), 15)
	})

	t.Run("file order preserved", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.json")
		content := `{"Zeta": ["z"], "Alpha": ["a"], "General": []}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tax, err := Load(path)
		require.NoError(t, err)
		require.Len(t, tax.Categories(), 3)
		assert.Equal(t, "Zeta", tax.Categories()[0].Name)
		assert.Equal(t, "Alpha", tax.Categories()[1].Name)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
