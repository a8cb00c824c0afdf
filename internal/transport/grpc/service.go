package grpc

import (
	"context"

	"google.golang.org/grpc"

	"txguard/internal/model"
)

const (
	eventServiceName      = "txguard.v1.EventService"
	validationServiceName = "txguard.v1.ValidationService"

	publishMethod  = "/" + eventServiceName + "/Publish"
	evaluateMethod = "/" + validationServiceName + "/Evaluate"
	auditMethod    = "/" + validationServiceName + "/Audit"
)

type EventRequest struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
}

type EventResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type EventServiceServer interface {
	Publish(ctx context.Context, req *EventRequest) (*EventResponse, error)
}

type ValidationServiceServer interface {
	Evaluate(ctx context.Context, req *model.OperationRequest) (*model.Outcome, error)
	Audit(ctx context.Context, req *model.AuditRequest) (*model.AuditReport, error)
}

func RegisterEventServiceServer(s grpc.ServiceRegistrar, srv EventServiceServer) {
	s.RegisterService(&eventServiceDesc, srv)
}

func RegisterValidationServiceServer(s grpc.ServiceRegistrar, srv ValidationServiceServer) {
	s.RegisterService(&validationServiceDesc, srv)
}

var eventServiceDesc = grpc.ServiceDesc{
	ServiceName: eventServiceName,
	HandlerType: (*EventServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Publish", Handler: publishHandler},
	},
	Streams: []grpc.StreamDesc{},
}

var validationServiceDesc = grpc.ServiceDesc{
	ServiceName: validationServiceName,
	HandlerType: (*ValidationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Audit", Handler: auditHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func publishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EventRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		return srv.(EventServiceServer).Publish(ctx, req.(*EventRequest))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: publishMethod}, call)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(model.OperationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidationServiceServer).Evaluate(ctx, req.(*model.OperationRequest))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}, call)
}

func auditHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(model.AuditRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidationServiceServer).Audit(ctx, req.(*model.AuditRequest))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: auditMethod}, call)
}
