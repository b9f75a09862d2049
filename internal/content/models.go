package content

import (
	"time"

	"gorm.io/datatypes"
)

// Document statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Document is one record of any content type. The type-specific fields live
// in Data; Title mirrors the type's main field for sorting and search.
//
// The tenant relation exists in two storage forms: TenantID is the numeric
// foreign key written by the application, TenantRef is the stable external
// identifier written by older imports. Either may be set; consumers must
// treat them as the same relation (tenant.Scope.Matches does).
type Document struct {
	ID          string         `json:"documentId" gorm:"primaryKey;size:36"`
	ContentType string         `json:"contentType" gorm:"size:100;not null;index:idx_documents_type_status"`
	Title       string         `json:"title" gorm:"size:500;index"`
	Status      string         `json:"status" gorm:"size:20;not null;default:draft;index:idx_documents_type_status"`
	Data        datatypes.JSON `json:"data"`

	TenantID  *int64 `json:"tenantId,omitempty" gorm:"index"`
	TenantRef string `json:"tenantRef,omitempty" gorm:"size:100;index"`

	CreatedByID int64      `json:"createdById" gorm:"index"`
	UpdatedByID int64      `json:"updatedById"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// Op is a filter comparison operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpIn       Op = "in"
	OpContains Op = "contains"
)

// Filter is a composable restriction over document columns. Exactly one of
// (Field, And, Or) is meaningful per node. The zero Filter matches
// everything.
type Filter struct {
	Field string   `json:"field,omitempty"`
	Op    Op       `json:"op,omitempty"`
	Value any      `json:"value,omitempty"`
	And   []Filter `json:"and,omitempty"`
	Or    []Filter `json:"or,omitempty"`
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return f.Field == "" && len(f.And) == 0 && len(f.Or) == 0
}

// Eq builds an equality filter. A nil value means "column is null".
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Contains builds a case-insensitive substring filter.
func Contains(field, substring string) Filter {
	return Filter{Field: field, Op: OpContains, Value: substring}
}

// And conjoins filters, dropping zero members.
func And(filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if !f.IsZero() {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return Filter{}
	case 1:
		return kept[0]
	default:
		return Filter{And: kept}
	}
}

// Or disjoins filters, dropping zero members.
func Or(filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if !f.IsZero() {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return Filter{}
	case 1:
		return kept[0]
	default:
		return Filter{Or: kept}
	}
}

// MatchNone is the canonical fail-closed filter: the primary key is never
// null, so "id is null" matches no document.
func MatchNone() Filter {
	return Eq("id", nil)
}

// ListQuery describes a findMany call.
type ListQuery struct {
	Filter   Filter
	Search   string // substring match on the title column
	Page     int
	PageSize int
	Sort     string // column name, optionally prefixed with - for descending
}
