package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("content: document not found")
	ErrUnknownType   = errors.New("content: unknown content type")
	ErrInvalidFilter = errors.New("content: invalid filter")
)

// Columns a filter or sort may reference. Everything else lives inside the
// JSON payload and is not queryable through the document API.
var queryableColumns = map[string]bool{
	"id":            true,
	"content_type":  true,
	"status":        true,
	"title":         true,
	"tenant_id":     true,
	"tenant_ref":    true,
	"created_by_id": true,
	"updated_by_id": true,
	"created_at":    true,
	"published_at":  true,
}

// Store is the document layer: a thin, type-agnostic CRUD-plus-publish
// surface over the documents table. It applies no authorization of its own;
// tenant isolation is layered on top by the scope interceptor.
type Store struct {
	db       *gorm.DB
	registry *Registry
}

func NewStore(db *gorm.DB, registry *Registry) *Store {
	return &Store{db: db, registry: registry}
}

// Registry exposes the type registry the store was built with.
func (s *Store) Registry() *Registry { return s.registry }

// DB exposes the underlying handle for maintenance operations.
func (s *Store) DB() *gorm.DB { return s.db }

// FindMany lists documents of one type.
func (s *Store) FindMany(ctx context.Context, contentType string, q ListQuery) ([]*Document, int64, error) {
	if _, ok := s.registry.Get(contentType); !ok {
		return nil, 0, ErrUnknownType
	}

	filter := q.Filter
	if q.Search != "" {
		filter = And(filter, Contains("title", q.Search))
	}

	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	base := s.db.WithContext(ctx).Model(&Document{}).Where("content_type = ?", contentType)
	if where != "" {
		base = base.Where(where, args...)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := buildOrder(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	query := base.Order(order)
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		query = query.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}

	var docs []*Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// FindOne loads one document by id within a type.
func (s *Store) FindOne(ctx context.Context, contentType, id string) (*Document, error) {
	if _, ok := s.registry.Get(contentType); !ok {
		return nil, ErrUnknownType
	}
	var doc Document
	err := s.db.WithContext(ctx).
		Where("content_type = ? AND id = ?", contentType, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByID loads a document by id alone. Used by background jobs that only
// carry the record id.
func (s *Store) FindByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create persists a new document. A missing id is generated; a missing
// status defaults to draft.
func (s *Store) Create(ctx context.Context, doc *Document) error {
	if _, ok := s.registry.Get(doc.ContentType); !ok {
		return ErrUnknownType
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	return s.db.WithContext(ctx).Create(doc).Error
}

// UpdateParams carries the mutable document fields.
type UpdateParams struct {
	Title       *string
	Data        datatypes.JSON
	UpdatedByID int64
}

// Update applies the given changes and returns the updated document.
func (s *Store) Update(ctx context.Context, contentType, id string, params UpdateParams) (*Document, error) {
	doc, err := s.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_by_id": params.UpdatedByID,
	}
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.Data != nil {
		updates["data"] = params.Data
	}

	if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.FindOne(ctx, contentType, id)
}

// Delete removes a document, returning the record as it was.
func (s *Store) Delete(ctx context.Context, contentType, id string) (*Document, error) {
	doc, err := s.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Publish marks a document published.
func (s *Store) Publish(ctx context.Context, contentType, id string) (*Document, error) {
	return s.setStatus(ctx, contentType, id, StatusPublished)
}

// Unpublish reverts a document to draft.
func (s *Store) Unpublish(ctx context.Context, contentType, id string) (*Document, error) {
	return s.setStatus(ctx, contentType, id, StatusDraft)
}

func (s *Store) setStatus(ctx context.Context, contentType, id, status string) (*Document, error) {
	doc, err := s.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"status": status}
	if status == StatusPublished {
		now := time.Now().UTC()
		updates["published_at"] = &now
	} else {
		updates["published_at"] = nil
	}
	if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.FindOne(ctx, contentType, id)
}

// SetTenant connects a document to a tenant, writing both storage forms so
// later reads match regardless of which one a consumer inspects.
func (s *Store) SetTenant(ctx context.Context, id string, tenantID int64, externalID string) error {
	res := s.db.WithContext(ctx).Model(&Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tenant_id":  tenantID,
			"tenant_ref": externalID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SweepTenantless connects every tenant-less document of the given types to
// the target tenant. Returns the number of documents updated.
func (s *Store) SweepTenantless(ctx context.Context, contentTypes []string, tenantID int64, externalID string) (int64, error) {
	if len(contentTypes) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&Document{}).
		Where("content_type IN ?", contentTypes).
		Where("tenant_id IS NULL AND (tenant_ref IS NULL OR tenant_ref = '')").
		Updates(map[string]interface{}{
			"tenant_id":  tenantID,
			"tenant_ref": externalID,
		})
	return res.RowsAffected, res.Error
}

// buildWhere translates a Filter into a SQL fragment with arguments.
func buildWhere(f Filter) (string, []any, error) {
	if f.IsZero() {
		return "", nil, nil
	}

	if f.Field != "" {
		if !queryableColumns[f.Field] {
			return "", nil, fmt.Errorf("%w: column %q", ErrInvalidFilter, f.Field)
		}
		switch f.Op {
		case OpEq, "":
			if f.Value == nil {
				return f.Field + " IS NULL", nil, nil
			}
			return f.Field + " = ?", []any{f.Value}, nil
		case OpNe:
			if f.Value == nil {
				return f.Field + " IS NOT NULL", nil, nil
			}
			return f.Field + " <> ?", []any{f.Value}, nil
		case OpIn:
			return f.Field + " IN ?", []any{f.Value}, nil
		case OpContains:
			str, _ := f.Value.(string)
			return "lower(" + f.Field + ") LIKE ?", []any{"%" + strings.ToLower(str) + "%"}, nil
		default:
			return "", nil, fmt.Errorf("%w: operator %q", ErrInvalidFilter, f.Op)
		}
	}

	var (
		members []Filter
		joiner  string
	)
	if len(f.And) > 0 {
		members, joiner = f.And, " AND "
	} else {
		members, joiner = f.Or, " OR "
	}

	parts := make([]string, 0, len(members))
	var args []any
	for _, m := range members {
		sql, mArgs, err := buildWhere(m)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, mArgs...)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(parts, joiner), args, nil
}

func buildOrder(sort string) (string, error) {
	if sort == "" {
		return "created_at DESC", nil
	}
	desc := false
	col := sort
	if strings.HasPrefix(sort, "-") {
		desc = true
		col = sort[1:]
	}
	if !queryableColumns[col] {
		return "", fmt.Errorf("%w: sort column %q", ErrInvalidFilter, col)
	}
	if desc {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}
