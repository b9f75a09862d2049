package content

// FieldKind enumerates the field types the admin UI can render.
type FieldKind string

const (
	FieldString   FieldKind = "string"
	FieldText     FieldKind = "text"
	FieldRichText FieldKind = "richtext"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldBoolean  FieldKind = "boolean"
	FieldMedia    FieldKind = "media"
	FieldRelation FieldKind = "relation"
)

// FieldDefinition declares one attribute of a content type.
type FieldDefinition struct {
	Name   string    `json:"name"`
	Kind   FieldKind `json:"kind"`
	Target string    `json:"target,omitempty"` // relation target content type
}

// TypeDefinition statically declares a content type: its fields, whether it
// is tenant-scoped, and which fields the editor UI must never show. This
// registry replaces runtime reflection over framework metadata; the tenant
// relation storage shape is the same for every type (tenant_id / tenant_ref
// columns on the documents table).
type TypeDefinition struct {
	UID          string            `json:"uid"`
	DisplayName  string            `json:"displayName"`
	MainField    string            `json:"mainField"`
	TenantScoped bool              `json:"tenantScoped"`
	Fields       []FieldDefinition `json:"fields"`
	HiddenFields []string          `json:"hiddenFields"`
}

// Field returns the definition of a named field.
func (d TypeDefinition) Field(name string) (FieldDefinition, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// RelationTarget returns the target type of a relation field.
func (d TypeDefinition) RelationTarget(name string) (string, bool) {
	f, ok := d.Field(name)
	if !ok || f.Kind != FieldRelation {
		return "", false
	}
	return f.Target, true
}

// Registry holds all declared content types.
type Registry struct {
	types map[string]TypeDefinition
	order []string
}

// NewRegistry builds a registry from definitions, preserving order.
func NewRegistry(defs ...TypeDefinition) *Registry {
	r := &Registry{types: make(map[string]TypeDefinition, len(defs))}
	for _, d := range defs {
		if _, exists := r.types[d.UID]; exists {
			continue
		}
		r.types[d.UID] = d
		r.order = append(r.order, d.UID)
	}
	return r
}

// Get returns a type definition by uid.
func (r *Registry) Get(uid string) (TypeDefinition, bool) {
	d, ok := r.types[uid]
	return d, ok
}

// IsTenantScoped reports whether the type is subject to tenant isolation.
func (r *Registry) IsTenantScoped(uid string) bool {
	d, ok := r.types[uid]
	return ok && d.TenantScoped
}

// All returns every type definition in declaration order.
func (r *Registry) All() []TypeDefinition {
	out := make([]TypeDefinition, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.types[uid])
	}
	return out
}

// TenantScopedUIDs returns the uids of all tenant-scoped types.
func (r *Registry) TenantScopedUIDs() []string {
	var out []string
	for _, uid := range r.order {
		if r.types[uid].TenantScoped {
			out = append(out, uid)
		}
	}
	return out
}

// Fields the editor role must never see, shared by every tenant-scoped type.
var defaultHiddenFields = []string{"tenant", "viewCount", "featured"}

// DefaultRegistry declares the platform's content types: news, the
// organization directory, the liturgical calendar, and advertising.
func DefaultRegistry() *Registry {
	scoped := func(uid, display, mainField string, fields ...FieldDefinition) TypeDefinition {
		fields = append(fields, FieldDefinition{Name: "tenant", Kind: FieldRelation, Target: "tenant"})
		return TypeDefinition{
			UID:          uid,
			DisplayName:  display,
			MainField:    mainField,
			TenantScoped: true,
			Fields:       fields,
			HiddenFields: defaultHiddenFields,
		}
	}

	return NewRegistry(
		scoped("article", "Article", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "summary", Kind: FieldText},
			FieldDefinition{Name: "body", Kind: FieldRichText},
			FieldDefinition{Name: "slug", Kind: FieldString},
			FieldDefinition{Name: "cover", Kind: FieldMedia},
			FieldDefinition{Name: "publishDate", Kind: FieldDate},
			FieldDefinition{Name: "viewCount", Kind: FieldNumber},
			FieldDefinition{Name: "featured", Kind: FieldBoolean},
			FieldDefinition{Name: "category", Kind: FieldRelation, Target: "category"},
			FieldDefinition{Name: "tags", Kind: FieldRelation, Target: "tag"},
		),
		scoped("flash_news", "Flash News", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "body", Kind: FieldText},
			FieldDefinition{Name: "startDate", Kind: FieldDate},
			FieldDefinition{Name: "endDate", Kind: FieldDate},
		),
		scoped("category", "Category", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "slug", Kind: FieldString},
			FieldDefinition{Name: "description", Kind: FieldText},
		),
		scoped("tag", "Tag", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "slug", Kind: FieldString},
		),
		scoped("page", "Page", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "slug", Kind: FieldString},
			FieldDefinition{Name: "body", Kind: FieldRichText},
		),
		scoped("diocese", "Diocese", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "city", Kind: FieldString},
			FieldDefinition{Name: "address", Kind: FieldText},
			FieldDefinition{Name: "website", Kind: FieldString},
			FieldDefinition{Name: "bishop", Kind: FieldRelation, Target: "bishop"},
		),
		scoped("parish", "Parish", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "address", Kind: FieldText},
			FieldDefinition{Name: "massSchedule", Kind: FieldText},
			FieldDefinition{Name: "diocese", Kind: FieldRelation, Target: "diocese"},
			FieldDefinition{Name: "priest", Kind: FieldRelation, Target: "priest"},
		),
		scoped("priest", "Priest", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "email", Kind: FieldString},
			FieldDefinition{Name: "phone", Kind: FieldString},
			FieldDefinition{Name: "parish", Kind: FieldRelation, Target: "parish"},
		),
		scoped("bishop", "Bishop", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "motto", Kind: FieldString},
			FieldDefinition{Name: "diocese", Kind: FieldRelation, Target: "diocese"},
		),
		scoped("directory_entry", "Directory Entry", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "kind", Kind: FieldString},
			FieldDefinition{Name: "address", Kind: FieldText},
			FieldDefinition{Name: "phone", Kind: FieldString},
			FieldDefinition{Name: "email", Kind: FieldString},
			FieldDefinition{Name: "website", Kind: FieldString},
		),
		scoped("liturgical_day", "Liturgical Day", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "date", Kind: FieldDate},
			FieldDefinition{Name: "season", Kind: FieldString},
			FieldDefinition{Name: "color", Kind: FieldString},
			FieldDefinition{Name: "rank", Kind: FieldString},
		),
		scoped("liturgical_reading", "Liturgical Reading", "reference",
			FieldDefinition{Name: "reference", Kind: FieldString},
			FieldDefinition{Name: "date", Kind: FieldDate},
			FieldDefinition{Name: "cycle", Kind: FieldString},
			FieldDefinition{Name: "text", Kind: FieldRichText},
		),
		scoped("saint", "Saint", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "feastDay", Kind: FieldDate},
			FieldDefinition{Name: "biography", Kind: FieldRichText},
		),
		scoped("event", "Event", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "startDate", Kind: FieldDate},
			FieldDefinition{Name: "endDate", Kind: FieldDate},
			FieldDefinition{Name: "location", Kind: FieldString},
			FieldDefinition{Name: "description", Kind: FieldText},
		),
		scoped("advertisement", "Advertisement", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "image", Kind: FieldMedia},
			FieldDefinition{Name: "url", Kind: FieldString},
			FieldDefinition{Name: "slot", Kind: FieldString},
			FieldDefinition{Name: "startDate", Kind: FieldDate},
			FieldDefinition{Name: "endDate", Kind: FieldDate},
		),
		scoped("banner", "Banner", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "image", Kind: FieldMedia},
			FieldDefinition{Name: "url", Kind: FieldString},
			FieldDefinition{Name: "position", Kind: FieldString},
		),
		scoped("magazine_issue", "Magazine Issue", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "number", Kind: FieldNumber},
			FieldDefinition{Name: "coverImage", Kind: FieldMedia},
			FieldDefinition{Name: "publishDate", Kind: FieldDate},
			FieldDefinition{Name: "pdfUrl", Kind: FieldString},
		),
		scoped("prayer", "Prayer", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "body", Kind: FieldRichText},
			FieldDefinition{Name: "occasion", Kind: FieldString},
		),
		scoped("homily", "Homily", "title",
			FieldDefinition{Name: "title", Kind: FieldString},
			FieldDefinition{Name: "author", Kind: FieldString},
			FieldDefinition{Name: "date", Kind: FieldDate},
			FieldDefinition{Name: "body", Kind: FieldRichText},
		),
		scoped("obituary", "Obituary", "name",
			FieldDefinition{Name: "name", Kind: FieldString},
			FieldDefinition{Name: "dates", Kind: FieldString},
			FieldDefinition{Name: "body", Kind: FieldRichText},
		),
	)
}
