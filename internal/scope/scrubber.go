package scope

import (
	"go.uber.org/zap"

	"backend/internal/content"
	"backend/internal/tenant"
)

// Scrubber strips the fields editors must never see from the view
// configurations served to the admin UI. It is cosmetic hardening on top of
// the interceptor: even if a scrubbed field were submitted anyway, the write
// path discards it.
type Scrubber struct {
	registry *content.Registry
	logger   *zap.Logger
}

func NewScrubber(registry *content.Registry, logger *zap.Logger) *Scrubber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scrubber{registry: registry, logger: logger}
}

// Scrub removes hidden fields from the layout grids for editor callers.
// Super-admins and other roles see the full layout. Metadatas are left
// intact so stored configurations round-trip unchanged; the UI only renders
// fields that appear in a layout.
func (s *Scrubber) Scrub(id tenant.Identity, cfg *content.LayoutConfig) {
	if cfg == nil {
		return
	}
	if !id.IsEditor() || id.IsSuperAdmin() {
		return
	}
	def, ok := s.registry.Get(cfg.UID)
	if !ok || !def.TenantScoped || len(def.HiddenFields) == 0 {
		return
	}

	hidden := make(map[string]bool, len(def.HiddenFields))
	for _, name := range def.HiddenFields {
		hidden[name] = true
	}

	edit := cfg.Layouts.Edit[:0]
	for _, srcRow := range cfg.Layouts.Edit {
		row := make([]content.LayoutCell, 0, len(srcRow))
		for _, cell := range srcRow {
			if !hidden[cell.Name] {
				row = append(row, cell)
			}
		}
		if len(row) > 0 {
			edit = append(edit, row)
		}
	}
	cfg.Layouts.Edit = edit

	list := cfg.Layouts.List[:0]
	for _, col := range cfg.Layouts.List {
		if !hidden[col] {
			list = append(list, col)
		}
	}
	cfg.Layouts.List = list
}
