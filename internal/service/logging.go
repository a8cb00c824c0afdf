package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"txguard/internal/model"
)

// WithLogging wraps a service so that every call announces its completion,
// whether the operation was accepted, rejected or failed.
func WithLogging(next ValidationService, log *zap.Logger) ValidationService {
	return &loggingService{next: next, log: log}
}

type loggingService struct {
	next ValidationService
	log  *zap.Logger
}

func (s *loggingService) Evaluate(ctx context.Context, req model.OperationRequest) (out *model.Outcome, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{
			zap.String("operation", string(req.Kind)),
			zap.String("role", string(req.Actor.Role)),
			zap.Stringer("amount", req.Amount),
			zap.Duration("took", time.Since(start)),
		}
		switch {
		case err != nil:
			s.log.Error("operation failed", append(fields, zap.Error(err))...)
		case out.Accepted:
			s.log.Info("operation completed", append(fields, zap.Bool("accepted", true))...)
		default:
			s.log.Info("operation completed", append(fields,
				zap.Bool("accepted", false),
				zap.String("rejection", string(out.Rejection.Kind)),
				zap.String("reason", out.Rejection.Message),
			)...)
		}
	}(time.Now())

	return s.next.Evaluate(ctx, req)
}

func (s *loggingService) Audit(ctx context.Context, req model.AuditRequest) (report *model.AuditReport, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{
			zap.Int("records", len(req.Records)),
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Duration("took", time.Since(start)),
		}
		if err != nil {
			s.log.Error("audit failed", append(fields, zap.Error(err))...)
			return
		}
		s.log.Info("audit completed", append(fields,
			zap.String("audit_id", report.ID),
			zap.Int("valid", report.Valid),
			zap.Int("rejected", report.Rejected),
			zap.Bool("replayed", report.Replayed),
		)...)
	}(time.Now())

	return s.next.Audit(ctx, req)
}

func (s *loggingService) Record(ctx context.Context, event model.OutcomeEvent) error {
	err := s.next.Record(ctx, event)
	if err != nil {
		s.log.Error("failed to journal outcome", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	s.log.Debug("outcome journaled", zap.String("event_id", event.ID), zap.String("operation", string(event.Operation)))
	return nil
}

func (s *loggingService) Recent(ctx context.Context, limit int) ([]model.OutcomeEvent, error) {
	return s.next.Recent(ctx, limit)
}
