package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backend/internal/content"
	"backend/internal/metrics"
	"backend/internal/tenant"
	"backend/internal/worker/tasks"
)

// UserDirectory is the slice of the admin-user store the backfill needs: the
// email and roles behind a numeric user id. Roles matter because the resolver
// only scopes editors; stamping must honor the same policy as the request path.
type UserDirectory interface {
	EmailByID(ctx context.Context, id int64) (string, error)
	RolesByID(ctx context.Context, id int64) ([]string, error)
}

// BackfillHandler repairs the tenant relation of documents that were created
// before the creator's assignment existed, or whose synchronous stamping was
// bypassed (imports, legacy rows).
type BackfillHandler struct {
	store    *content.Store
	resolver *tenant.Resolver
	tenants  *tenant.Service
	users    UserDirectory
	logger   *zap.Logger
}

func NewBackfillHandler(store *content.Store, resolver *tenant.Resolver, tenants *tenant.Service, users UserDirectory, logger *zap.Logger) *BackfillHandler {
	return &BackfillHandler{
		store:    store,
		resolver: resolver,
		tenants:  tenants,
		users:    users,
		logger:   logger,
	}
}

// HandleBackfillDocument re-resolves the creator of one document and stamps
// their tenant in. A document whose creator cannot be tied to a tenant is
// left untouched; the task succeeds so it is not retried forever.
func (h *BackfillHandler) HandleBackfillDocument(ctx context.Context, t *asynq.Task) error {
	var p tasks.BackfillDocumentPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}

	doc, err := h.store.FindByID(ctx, p.DocumentID)
	if errors.Is(err, content.ErrNotFound) {
		// Deleted before the task ran.
		metrics.BackfillTotal.WithLabelValues("document", "skipped").Inc()
		return nil
	}
	if err != nil {
		metrics.BackfillTotal.WithLabelValues("document", "error").Inc()
		return err
	}
	if doc.TenantID != nil || doc.TenantRef != "" {
		metrics.BackfillTotal.WithLabelValues("document", "skipped").Inc()
		return nil
	}

	scope, err := h.creatorScope(ctx, doc.CreatedByID)
	if err != nil {
		metrics.BackfillTotal.WithLabelValues("document", "error").Inc()
		return err
	}
	if scope == nil {
		h.logger.Info("backfill skipped, creator has no tenant",
			zap.String("document_id", doc.ID),
			zap.Int64("created_by_id", doc.CreatedByID),
		)
		metrics.BackfillTotal.WithLabelValues("document", "skipped").Inc()
		return nil
	}

	if err := h.store.SetTenant(ctx, doc.ID, scope.TenantID, scope.ExternalID); err != nil {
		metrics.BackfillTotal.WithLabelValues("document", "error").Inc()
		return err
	}

	h.logger.Info("document backfilled",
		zap.String("document_id", doc.ID),
		zap.Int64("tenant_id", scope.TenantID),
	)
	metrics.BackfillTotal.WithLabelValues("document", "completed").Inc()
	return nil
}

// HandleBackfillSweep connects every tenant-less record of the requested
// types to the target tenant. An empty type list means all scoped types.
func (h *BackfillHandler) HandleBackfillSweep(ctx context.Context, t *asynq.Task) error {
	var p tasks.BackfillSweepPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}

	target, err := h.tenants.GetTenantByExternalID(ctx, p.TenantExternalID)
	if err != nil {
		metrics.BackfillTotal.WithLabelValues("sweep", "error").Inc()
		return fmt.Errorf("resolve tenant %s: %w", p.TenantExternalID, err)
	}

	types := p.ContentTypes
	if len(types) == 0 {
		types = h.store.Registry().TenantScopedUIDs()
	}

	updated, err := h.store.SweepTenantless(ctx, types, target.ID, target.ExternalID)
	if err != nil {
		metrics.BackfillTotal.WithLabelValues("sweep", "error").Inc()
		return err
	}

	h.logger.Info("tenantless sweep completed",
		zap.String("tenant_external_id", p.TenantExternalID),
		zap.Int64("documents_updated", updated),
		zap.Int("content_types", len(types)),
	)
	metrics.BackfillTotal.WithLabelValues("sweep", "completed").Inc()
	return nil
}

// creatorScope resolves the tenant of the user who created a record, using
// the creator's real roles. The resolver never scopes a super-administrator,
// even when a stray assignment row exists for their email; a document created
// by one stays tenant-less.
func (h *BackfillHandler) creatorScope(ctx context.Context, userID int64) (*tenant.Scope, error) {
	if userID <= 0 {
		return nil, nil
	}
	email, err := h.users.EmailByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("look up user %d: %w", userID, err)
	}
	if email == "" {
		return nil, nil
	}
	roles, err := h.users.RolesByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("look up roles for user %d: %w", userID, err)
	}
	return h.resolver.Resolve(ctx, tenant.Identity{
		UserID: userID,
		Email:  email,
		Roles:  roles,
	})
}
