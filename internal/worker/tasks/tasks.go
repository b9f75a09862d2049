package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task types.
const (
	// TypeBackfillDocument re-resolves the creator of one tenant-less
	// document and patches the tenant relation in.
	TypeBackfillDocument = "tenant:backfill_document"
	// TypeBackfillSweep connects every tenant-less record of the given
	// content types to a target tenant.
	TypeBackfillSweep = "tenant:backfill_sweep"
)

// Queue is the asynq queue used by tenant backfill tasks.
const Queue = "backfill"

// BackfillDocumentPayload identifies the document to backfill.
type BackfillDocumentPayload struct {
	DocumentID string `json:"document_id"`
}

// BackfillSweepPayload describes a bulk backfill run.
type BackfillSweepPayload struct {
	TenantExternalID string   `json:"tenant_external_id"`
	ContentTypes     []string `json:"content_types"`
}

// NewBackfillDocumentTask builds the per-document backfill task.
func NewBackfillDocumentTask(documentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(BackfillDocumentPayload{DocumentID: documentID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBackfillDocument, payload, asynq.Queue(Queue)), nil
}

// NewBackfillSweepTask builds the bulk backfill task.
func NewBackfillSweepTask(tenantExternalID string, contentTypes []string) (*asynq.Task, error) {
	payload, err := json.Marshal(BackfillSweepPayload{
		TenantExternalID: tenantExternalID,
		ContentTypes:     contentTypes,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBackfillSweep, payload, asynq.Queue(Queue)), nil
}
