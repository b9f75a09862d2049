package content

import "strings"

// LayoutCell places one field in the edit grid. Size is measured in twelfths
// of the row width.
type LayoutCell struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Layouts describe how the admin UI arranges a type's fields.
type Layouts struct {
	Edit [][]LayoutCell `json:"edit"`
	List []string       `json:"list"`
}

// LayoutSettings carry the list-view defaults for a type.
type LayoutSettings struct {
	MainField   string `json:"mainField"`
	DefaultSort string `json:"defaultSortBy"`
	PageSize    int    `json:"pageSize"`
}

// FieldMetadata is the per-field display information the admin UI renders.
type FieldMetadata struct {
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	Visible  bool   `json:"visible"`
}

// LayoutConfig is the per-type view configuration served to the admin UI.
// Metadatas always cover every declared field; the layouts decide what is
// actually shown.
type LayoutConfig struct {
	UID       string                   `json:"uid"`
	Settings  LayoutSettings           `json:"settings"`
	Metadatas map[string]FieldMetadata `json:"metadatas"`
	Layouts   Layouts                  `json:"layouts"`
}

func fieldLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// DefaultLayout derives a view configuration from a type definition: wide
// fields get a full row, everything else packs two to a row, and the list
// view shows the main field plus the record status.
func DefaultLayout(def TypeDefinition) *LayoutConfig {
	cfg := &LayoutConfig{
		UID: def.UID,
		Settings: LayoutSettings{
			MainField:   def.MainField,
			DefaultSort: "created_at",
			PageSize:    10,
		},
		Metadatas: make(map[string]FieldMetadata, len(def.Fields)),
	}

	var row []LayoutCell
	flush := func() {
		if len(row) > 0 {
			cfg.Layouts.Edit = append(cfg.Layouts.Edit, row)
			row = nil
		}
	}
	for _, f := range def.Fields {
		cfg.Metadatas[f.Name] = FieldMetadata{
			Label:    fieldLabel(f.Name),
			Sortable: f.Kind == FieldString || f.Kind == FieldNumber || f.Kind == FieldDate,
			Visible:  true,
		}
		switch f.Kind {
		case FieldText, FieldRichText, FieldMedia:
			flush()
			cfg.Layouts.Edit = append(cfg.Layouts.Edit, []LayoutCell{{Name: f.Name, Size: 12}})
		default:
			row = append(row, LayoutCell{Name: f.Name, Size: 6})
			if len(row) == 2 {
				flush()
			}
		}
	}
	flush()

	cfg.Layouts.List = []string{def.MainField, "status", "createdAt"}
	return cfg
}
