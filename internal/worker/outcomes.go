package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"txguard/internal/model"
	"txguard/internal/service"
)

const journalGroup = "txguard_journal"

// OutcomeWorker listens on the outcome topic and journals every decision to
// PostgreSQL through the service.
type OutcomeWorker struct {
	svc      service.ValidationService
	natsConn *nats.Conn
	log      *zap.Logger
}

func NewOutcomeWorker(svc service.ValidationService, nc *nats.Conn, log *zap.Logger) *OutcomeWorker {
	return &OutcomeWorker{
		svc:      svc,
		natsConn: nc,
		log:      log,
	}
}

// Run subscribes to the outcome topic and blocks until ctx is cancelled.
func (w *OutcomeWorker) Run(ctx context.Context) error {
	// Each message is delivered to exactly one member of the queue group.
	sub, err := w.natsConn.QueueSubscribe(model.TopicOutcomes, journalGroup, func(m *nats.Msg) {
		_ = w.handle(ctx, m.Data)
	})
	if err != nil {
		return fmt.Errorf("worker: failed to subscribe to NATS: %w", err)
	}

	w.log.Info("outcome worker is running")

	<-ctx.Done()

	w.log.Info("outcome worker received shutdown signal, draining subscription")
	return sub.Drain()
}

func (w *OutcomeWorker) handle(ctx context.Context, data []byte) error {
	var event model.OutcomeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.log.Error("worker: failed to unmarshal outcome event", zap.Error(err))
		return err
	}

	if err := w.svc.Record(ctx, event); err != nil {
		w.log.Error("worker: failed to journal outcome",
			zap.String("event_id", event.ID),
			zap.String("operation", string(event.Operation)),
			zap.Error(err),
		)
		return err
	}

	w.log.Debug("worker: outcome journaled", zap.String("event_id", event.ID))
	return nil
}

// Start implements the infrastructure.Server interface.
func (w *OutcomeWorker) Start(ctx context.Context) error {
	return w.Run(ctx)
}

// Stop implements the infrastructure.Server interface (no-op, shutdown is via ctx).
func (w *OutcomeWorker) Stop(ctx context.Context) error {
	return nil
}
