package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"txguard/internal/model"
	"txguard/internal/service"
	"txguard/internal/validator"
)

// Server exposes the validation operations and, when the gRPC bus is in use,
// receives outcome events and journals them.
type Server struct {
	svc  service.ValidationService
	srv  *grpc.Server
	addr string
	log  *zap.Logger
}

func NewServer(addr string, svc service.ValidationService, log *zap.Logger) *Server {
	s := &Server{svc: svc, addr: addr, srv: grpc.NewServer(), log: log}
	RegisterEventServiceServer(s.srv, s)
	RegisterValidationServiceServer(s.srv, s)
	return s
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	return s.srv.Serve(lis)
}

func (s *Server) Stop(ctx context.Context) error {
	s.srv.GracefulStop()
	return nil
}

func (s *Server) Publish(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	if req.Topic != model.TopicOutcomes {
		return &EventResponse{Success: false, ErrorMessage: "unknown topic " + req.Topic}, nil
	}

	var event model.OutcomeEvent
	if err := json.Unmarshal(req.Payload, &event); err != nil {
		return &EventResponse{Success: false, ErrorMessage: "invalid payload: " + err.Error()}, nil
	}
	if err := s.svc.Record(ctx, event); err != nil {
		return &EventResponse{Success: false, ErrorMessage: err.Error()}, nil
	}
	return &EventResponse{Success: true}, nil
}

func (s *Server) Evaluate(ctx context.Context, req *model.OperationRequest) (*model.Outcome, error) {
	out, err := s.svc.Evaluate(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (s *Server) Audit(ctx context.Context, req *model.AuditRequest) (*model.AuditReport, error) {
	report, err := s.svc.Audit(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return report, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, validator.ErrUnsupportedOperation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
