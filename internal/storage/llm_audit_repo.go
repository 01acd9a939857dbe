package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"paperlens/internal/providers"

	"github.com/google/uuid"
)

const auditTimeout = 2 * time.Second

// LLMAuditRepo records every language-model and embedding call in llm_calls.
type LLMAuditRepo struct {
	db Execer
}

func NewLLMAuditRepo(db Execer) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

func (r *LLMAuditRepo) Insert(ctx context.Context, rec providers.CallRecord) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO llm_calls(call_id, operation, provider_name, model, status, error_type, latency_ms)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7)`,
		uuid.NewString(), rec.Operation, rec.Provider, rec.Model, rec.Status, rec.ErrorType, rec.Latency.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}

// RecordCall implements providers.Auditor. Audit failures are logged and never
// fail the call being audited.
func (r *LLMAuditRepo) RecordCall(ctx context.Context, rec providers.CallRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := r.Insert(ctx, rec); err != nil {
		log.Printf("llm audit write failed op=%s provider=%s error=%v", rec.Operation, rec.Provider, err)
	}
}
