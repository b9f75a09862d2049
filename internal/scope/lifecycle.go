package scope

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backend/internal/content"
	"backend/internal/metrics"
	"backend/internal/tenant"
	"backend/internal/worker/tasks"
)

// TaskEnqueuer is the slice of asynq.Client the auto-assigner needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AutoAssigner guarantees every tenant-scoped record ends up tenant-stamped
// without the editor ever seeing the field. Stamping is synchronous on
// create; the backfill of records that slip through is detached and
// best-effort, so it can never fail the editor's own request.
type AutoAssigner struct {
	enqueuer TaskEnqueuer
	logger   *zap.Logger
}

// NewAutoAssigner builds an AutoAssigner. The enqueuer may be nil, in which
// case no backfill tasks are scheduled (tests, or deployments without the
// worker).
func NewAutoAssigner(enqueuer TaskEnqueuer, logger *zap.Logger) *AutoAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoAssigner{enqueuer: enqueuer, logger: logger}
}

// Stamp writes the creator's tenant onto the record. Any tenant value the
// client supplied is discarded first: the relation is never client-writable.
// Unscoped creators (super-admins, imports) legitimately leave it unset.
func (a *AutoAssigner) Stamp(doc *content.Document, s *tenant.Scope) {
	doc.TenantID = nil
	doc.TenantRef = ""
	if s == nil || s.Zero() {
		return
	}
	id := s.TenantID
	doc.TenantID = &id
	doc.TenantRef = s.ExternalID
}

// EnsureAssigned schedules a defensive backfill when a persisted record
// still lacks a tenant. Failures are logged and swallowed.
func (a *AutoAssigner) EnsureAssigned(ctx context.Context, doc *content.Document) {
	if doc.TenantID != nil || doc.TenantRef != "" {
		return
	}
	if a.enqueuer == nil {
		return
	}

	task, err := tasks.NewBackfillDocumentTask(doc.ID)
	if err != nil {
		a.logger.Warn("build backfill task", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	if _, err := a.enqueuer.EnqueueContext(ctx, task); err != nil {
		metrics.BackfillTotal.WithLabelValues("document", "enqueue_error").Inc()
		a.logger.Warn("enqueue backfill task", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	metrics.BackfillTotal.WithLabelValues("document", "enqueued").Inc()
}

// ScheduleSweep enqueues an operator-invoked bulk backfill.
func (a *AutoAssigner) ScheduleSweep(ctx context.Context, tenantExternalID string, contentTypes []string) error {
	task, err := tasks.NewBackfillSweepTask(tenantExternalID, contentTypes)
	if err != nil {
		return err
	}
	if _, err := a.enqueuer.EnqueueContext(ctx, task); err != nil {
		metrics.BackfillTotal.WithLabelValues("sweep", "enqueue_error").Inc()
		return err
	}
	metrics.BackfillTotal.WithLabelValues("sweep", "enqueued").Inc()
	return nil
}
