package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"txguard/internal/model"
	"txguard/internal/repository"
	"txguard/internal/validator"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

var ErrInvalidEvent = errors.New("outcome event has no id")

// Pipeline runs the validator, announces every decision on the message bus
// and journals decisions received back from the bus.
type Pipeline struct {
	bus     repository.MessageBus
	store   OutcomeStore
	cache   ReportCache
	workers int
	log     *zap.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Pipeline)

// WithAuditWorkers sets how many goroutines a batch audit may use.
func WithAuditWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithReportCache enables idempotent audits.
func WithReportCache(c ReportCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func NewPipeline(bus repository.MessageBus, store OutcomeStore, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		bus:     bus,
		store:   store,
		workers: 1,
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Evaluate(ctx context.Context, req model.OperationRequest) (*model.Outcome, error) {
	out, err := validator.Evaluate(req)
	if err != nil {
		return nil, err
	}

	p.publish(p.event(out.Operation, out.Accepted, out.Rejection))
	return &out, nil
}

func (p *Pipeline) Audit(ctx context.Context, req model.AuditRequest) (*model.AuditReport, error) {
	if req.IdempotencyKey != "" && p.cache != nil {
		report, err := p.cache.Get(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			report.Replayed = true
			return report, nil
		case !errors.Is(err, repository.ErrCacheMiss):
			return nil, fmt.Errorf("audit cache lookup: %w", err)
		}
	}

	results, err := validator.AuditTransactionsConcurrent(ctx, req.Records, p.workers)
	if err != nil {
		return nil, err
	}

	report := &model.AuditReport{
		ID:        p.newID(),
		Total:     len(results),
		Results:   results,
		CreatedAt: p.now().UTC(),
	}
	for _, res := range results {
		if res.Valid {
			report.Valid++
		} else {
			report.Rejected++
		}

		ev := p.event(model.OpAuditRecord, res.Valid, res.Rejection)
		ev.AuditID = report.ID
		ev.RecordIndex = res.Index
		p.publish(ev)
	}

	if req.IdempotencyKey != "" && p.cache != nil {
		if _, err := p.cache.Put(ctx, req.IdempotencyKey, report); err != nil {
			p.log.Warn("failed to cache audit report",
				zap.String("audit_id", report.ID),
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err),
			)
		}
	}

	return report, nil
}

func (p *Pipeline) Record(ctx context.Context, event model.OutcomeEvent) error {
	if event.ID == "" {
		return ErrInvalidEvent
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = p.now().UTC()
	}
	return p.store.Save(ctx, event)
}

func (p *Pipeline) Recent(ctx context.Context, limit int) ([]model.OutcomeEvent, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return p.store.Recent(ctx, limit)
}

func (p *Pipeline) event(op model.OperationKind, accepted bool, rej *model.Rejection) model.OutcomeEvent {
	ev := model.OutcomeEvent{
		ID:        p.newID(),
		Operation: op,
		Accepted:  accepted,
		CreatedAt: p.now().UTC(),
	}
	if rej != nil {
		ev.RejectionKind = rej.Kind
		ev.Message = rej.Message
	}
	return ev
}

// publish is best effort: a bus failure never changes a decision.
func (p *Pipeline) publish(ev model.OutcomeEvent) {
	if p.bus == nil {
		return
	}
	if err := repository.PublishJSON(p.bus, model.TopicOutcomes, ev); err != nil {
		p.log.Warn("failed to publish outcome event",
			zap.String("event_id", ev.ID),
			zap.String("operation", string(ev.Operation)),
			zap.Error(err),
		)
	}
}
