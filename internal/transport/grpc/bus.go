package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Bus publishes events to a remote EventService over gRPC.
// Used when BusProvider == "grpc" in config.
type Bus struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewBusFromAddr dials the remote EventService and returns a Bus and a cleanup function.
func NewBusFromAddr(addr string, opts ...grpc.DialOption) (*Bus, func(), error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial event service %s: %w", addr, err)
	}
	cleanup := func() { _ = conn.Close() }
	return &Bus{conn: conn, timeout: 5 * time.Second}, cleanup, nil
}

// Publish sends an event to the remote EventService. A response with
// Success=false is reported as an error.
func (b *Bus) Publish(topic string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var resp EventResponse
	if err := b.conn.Invoke(ctx, publishMethod, &EventRequest{Topic: topic, Payload: data}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("event service rejected %s: %s", topic, resp.ErrorMessage)
	}
	return nil
}
