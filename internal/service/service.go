package service

import (
	"context"

	"txguard/internal/model"
)

// ValidationService defines the operations of the transaction pipeline.
// All transport layers (HTTP, gRPC, NATS) depend on this interface, not on the
// concrete implementation.
//
// Rejections are reported inside the returned Outcome or AuditReport; the
// error return is reserved for malformed requests and infrastructure failures.
type ValidationService interface {
	Evaluate(ctx context.Context, req model.OperationRequest) (*model.Outcome, error)
	Audit(ctx context.Context, req model.AuditRequest) (*model.AuditReport, error)
	Record(ctx context.Context, event model.OutcomeEvent) error
	Recent(ctx context.Context, limit int) ([]model.OutcomeEvent, error)
}

type OutcomeStore interface {
	Save(ctx context.Context, event model.OutcomeEvent) error
	Recent(ctx context.Context, limit int) ([]model.OutcomeEvent, error)
}

type ReportCache interface {
	Get(ctx context.Context, idempotencyKey string) (*model.AuditReport, error)
	Put(ctx context.Context, idempotencyKey string, report *model.AuditReport) (bool, error)
}
