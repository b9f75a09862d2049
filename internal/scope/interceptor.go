package scope

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"backend/internal/content"
	"backend/internal/metrics"
	"backend/internal/tenant"
)

// ErrForbidden is returned when a scoped caller touches a record belonging
// to a different tenant. Handlers must map it to a generic access-denied
// response that does not reveal whether the record exists.
var ErrForbidden = errors.New("scope: access denied")

var tracer = otel.Tracer("backend/internal/scope")

// Interceptor wraps the document store and is the last line of defense: it
// runs below the HTTP layer, so every code path that reads or writes
// tenant-scoped content types goes through it. Non-scoped types pass through
// untouched.
type Interceptor struct {
	store    *content.Store
	registry *content.Registry
	assigner *AutoAssigner
	logger   *zap.Logger
}

func NewInterceptor(store *content.Store, assigner *AutoAssigner, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		store:    store,
		registry: store.Registry(),
		assigner: assigner,
		logger:   logger,
	}
}

// Store exposes the wrapped document store for paths that are deliberately
// unchecked (none today outside tests).
func (i *Interceptor) Store() *content.Store { return i.store }

// currentScope returns the caller's scope when the content type is subject
// to isolation. A missing request context means an internal or background
// caller and is treated as unscoped.
func (i *Interceptor) currentScope(ctx context.Context, contentType string) *tenant.Scope {
	if !i.registry.IsTenantScoped(contentType) {
		return nil
	}
	s, ok := tenant.ScopeFromContext(ctx)
	if !ok {
		return nil
	}
	return s
}

// FindMany rewrites the list filter for scoped callers and passes through
// for everyone else.
func (i *Interceptor) FindMany(ctx context.Context, contentType string, q content.ListQuery) ([]*content.Document, int64, error) {
	ctx, span := tracer.Start(ctx, "scope.FindMany")
	defer span.End()
	span.SetAttributes(attribute.String("content.type", contentType))

	if s := i.currentScope(ctx, contentType); s != nil {
		q.Filter = content.And(q.Filter, FilterFor(s))
		span.SetAttributes(attribute.Bool("scope.restricted", true))
	}
	return i.store.FindMany(ctx, contentType, q)
}

// FindOne loads the document, then verifies tenant ownership. The load runs
// first so a missing record still surfaces as not-found.
func (i *Interceptor) FindOne(ctx context.Context, contentType, id string) (*content.Document, error) {
	doc, err := i.store.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := i.guard(ctx, contentType, "findOne", doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Create stamps the record with the creator's tenant before persisting and
// schedules a defensive backfill if it still ends up tenant-less.
func (i *Interceptor) Create(ctx context.Context, doc *content.Document) error {
	ctx, span := tracer.Start(ctx, "scope.Create")
	defer span.End()

	if i.registry.IsTenantScoped(doc.ContentType) {
		s, _ := tenant.ScopeFromContext(ctx)
		i.assigner.Stamp(doc, s)
	}
	if err := i.store.Create(ctx, doc); err != nil {
		return err
	}
	i.assigner.EnsureAssigned(ctx, doc)
	return nil
}

// Update verifies ownership before applying changes and schedules a backfill
// if the persisted record lacks a tenant.
func (i *Interceptor) Update(ctx context.Context, contentType, id string, params content.UpdateParams) (*content.Document, error) {
	doc, err := i.store.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := i.guard(ctx, contentType, "update", doc); err != nil {
		return nil, err
	}
	updated, err := i.store.Update(ctx, contentType, id, params)
	if err != nil {
		return nil, err
	}
	i.assigner.EnsureAssigned(ctx, updated)
	return updated, nil
}

// Delete verifies ownership before removing the record.
func (i *Interceptor) Delete(ctx context.Context, contentType, id string) (*content.Document, error) {
	doc, err := i.store.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := i.guard(ctx, contentType, "delete", doc); err != nil {
		return nil, err
	}
	return i.store.Delete(ctx, contentType, id)
}

// Publish verifies ownership before publishing.
func (i *Interceptor) Publish(ctx context.Context, contentType, id string) (*content.Document, error) {
	doc, err := i.store.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := i.guard(ctx, contentType, "publish", doc); err != nil {
		return nil, err
	}
	return i.store.Publish(ctx, contentType, id)
}

// Unpublish verifies ownership before reverting to draft.
func (i *Interceptor) Unpublish(ctx context.Context, contentType, id string) (*content.Document, error) {
	doc, err := i.store.FindOne(ctx, contentType, id)
	if err != nil {
		return nil, err
	}
	if err := i.guard(ctx, contentType, "unpublish", doc); err != nil {
		return nil, err
	}
	return i.store.Unpublish(ctx, contentType, id)
}

// guard rejects single-record operations that cross tenant boundaries.
// Records with no tenant at all are allowed through for resolved editors:
// they are fresh creations awaiting backfill, not foreign property.
func (i *Interceptor) guard(ctx context.Context, contentType, operation string, doc *content.Document) error {
	s := i.currentScope(ctx, contentType)
	if s == nil {
		return nil
	}
	if !s.Zero() && doc.TenantID == nil && doc.TenantRef == "" {
		return nil
	}
	if s.Matches(doc.TenantID, doc.TenantRef) {
		return nil
	}

	metrics.AccessDeniedTotal.WithLabelValues(contentType, operation).Inc()
	i.logger.Warn("cross-tenant access denied",
		zap.String("content_type", contentType),
		zap.String("operation", operation),
		zap.String("document_id", doc.ID),
		zap.Int64("caller_tenant_id", s.TenantID),
	)
	return ErrForbidden
}
