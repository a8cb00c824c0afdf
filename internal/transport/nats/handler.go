package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"txguard/internal/model"
	"txguard/internal/service"
)

const (
	SubjectEvaluate = "commands.evaluate"
	SubjectAudit    = "commands.audit"

	queueGroup = "txguard_group"
)

// Handler subscribes to NATS command subjects and delegates to the validation
// service. Requests sent with a reply subject get the JSON result back.
type Handler struct {
	svc service.ValidationService
	nc  *nats.Conn
	log *zap.Logger
}

func NewHandler(svc service.ValidationService, nc *nats.Conn, log *zap.Logger) *Handler {
	return &Handler{svc: svc, nc: nc, log: log}
}

// Start subscribes to command subjects and blocks until ctx is cancelled, then
// drains the subscriptions. The subscriptions never leave this goroutine.
func (h *Handler) Start(ctx context.Context) error {
	var subs []*nats.Subscription
	drain := func() {
		for _, s := range subs {
			_ = s.Drain()
		}
	}

	for _, subject := range []string{SubjectEvaluate, SubjectAudit} {
		sub, err := h.nc.QueueSubscribe(subject, queueGroup, func(m *nats.Msg) {
			reply := h.dispatch(ctx, m.Subject, m.Data)
			if m.Reply == "" {
				return
			}
			if err := m.Respond(reply); err != nil {
				h.log.Error("nats: failed to respond", zap.String("subject", m.Subject), zap.Error(err))
			}
		})
		if err != nil {
			drain()
			return fmt.Errorf("nats: subscribe %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}

	h.log.Info("NATS command handler is running")

	<-ctx.Done()
	h.log.Info("NATS command handler shutting down, draining subscriptions")

	drain()
	return nil
}

// Stop is a no-op; shutdown is driven by the ctx passed to Start.
func (h *Handler) Stop(ctx context.Context) error {
	return nil
}

type errorReply struct {
	Error string `json:"error"`
}

// dispatch decodes one command, runs it and encodes the reply.
func (h *Handler) dispatch(ctx context.Context, subject string, data []byte) []byte {
	var (
		result any
		err    error
	)

	switch subject {
	case SubjectEvaluate:
		var req model.OperationRequest
		if err = json.Unmarshal(data, &req); err != nil {
			err = fmt.Errorf("invalid evaluate command: %w", err)
			break
		}
		result, err = h.svc.Evaluate(ctx, req)
	case SubjectAudit:
		var req model.AuditRequest
		if err = json.Unmarshal(data, &req); err != nil {
			err = fmt.Errorf("invalid audit command: %w", err)
			break
		}
		result, err = h.svc.Audit(ctx, req)
	default:
		err = fmt.Errorf("unknown subject %q", subject)
	}

	if err != nil {
		h.log.Error("nats: command failed", zap.String("subject", subject), zap.Error(err))
		result = errorReply{Error: err.Error()}
	}

	out, mErr := json.Marshal(result)
	if mErr != nil {
		out, _ = json.Marshal(errorReply{Error: mErr.Error()})
	}
	return out
}
