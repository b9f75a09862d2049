package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	t.Run("every type is tenant scoped and hides the tenant field", func(t *testing.T) {
		all := r.All()
		require.NotEmpty(t, all)
		for _, def := range all {
			assert.True(t, def.TenantScoped, def.UID)
			assert.Contains(t, def.HiddenFields, "tenant", def.UID)

			f, ok := def.Field("tenant")
			require.True(t, ok, def.UID)
			assert.Equal(t, FieldRelation, f.Kind)
		}
	})

	t.Run("relation targets resolve", func(t *testing.T) {
		def, ok := r.Get("article")
		require.True(t, ok)

		target, ok := def.RelationTarget("category")
		require.True(t, ok)
		assert.Equal(t, "category", target)

		_, ok = def.RelationTarget("title")
		assert.False(t, ok)
	})

	t.Run("unknown types are not scoped", func(t *testing.T) {
		assert.False(t, r.IsTenantScoped("admin_user"))
	})
}

func TestDefaultLayout(t *testing.T) {
	r := DefaultRegistry()
	def, ok := r.Get("article")
	require.True(t, ok)

	cfg := DefaultLayout(def)
	assert.Equal(t, "article", cfg.UID)
	assert.Equal(t, "title", cfg.Settings.MainField)

	// Every declared field has metadata and appears in the edit grid.
	var placed []string
	for _, row := range cfg.Layouts.Edit {
		for _, cell := range row {
			placed = append(placed, cell.Name)
		}
	}
	for _, f := range def.Fields {
		assert.Contains(t, placed, f.Name)
		assert.Contains(t, cfg.Metadatas, f.Name)
	}
}
