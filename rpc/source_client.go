package rpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const sourceServiceName = "carhire.source.v1.SourceService"

// SourceClient is a typed client for a supplier's native RPC endpoint.
type SourceClient struct {
	conn  *grpc.ClientConn
	token string
}

// DialSource connects to a native RPC source. The endpoint may carry a
// proto:// scheme prefix or be a bare host:port. A non-empty tlsProfile
// switches the connection to TLS.
func DialSource(endpoint, tlsProfile, token string) (*SourceClient, error) {
	target := strings.TrimPrefix(endpoint, "proto://")

	creds := insecure.NewCredentials()
	if tlsProfile != "" {
		host := target
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		creds = credentials.NewTLS(&tls.Config{ServerName: host})
	}

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial source at %s: %w", target, err)
	}
	return &SourceClient{conn: conn, token: token}, nil
}

// Close releases the underlying connection.
func (c *SourceClient) Close() error {
	return c.conn.Close()
}

func (c *SourceClient) invoke(ctx context.Context, method string, req, reply interface{}) error {
	full := fmt.Sprintf("/%s/%s", sourceServiceName, method)
	if c.token != "" {
		ctx = WithBearer(ctx, c.token)
	}
	return c.conn.Invoke(ctx, full, req, reply)
}

func (c *SourceClient) GetLocations(ctx context.Context, req *LocationsRequest) (*LocationsReply, error) {
	reply := new(LocationsReply)
	if err := c.invoke(ctx, "GetLocations", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *SourceClient) GetAvailability(ctx context.Context, req *AvailabilityRequest) (*AvailabilityReply, error) {
	reply := new(AvailabilityReply)
	if err := c.invoke(ctx, "GetAvailability", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *SourceClient) CreateBooking(ctx context.Context, req *BookingCreateRequest) (*BookingReply, error) {
	reply := new(BookingReply)
	if err := c.invoke(ctx, "CreateBooking", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *SourceClient) ModifyBooking(ctx context.Context, req *BookingModifyRequest) (*BookingReply, error) {
	reply := new(BookingReply)
	if err := c.invoke(ctx, "ModifyBooking", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *SourceClient) CancelBooking(ctx context.Context, req *BookingCancelRequest) (*BookingReply, error) {
	reply := new(BookingReply)
	if err := c.invoke(ctx, "CancelBooking", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *SourceClient) CheckBooking(ctx context.Context, req *BookingCheckRequest) (*BookingReply, error) {
	reply := new(BookingReply)
	if err := c.invoke(ctx, "CheckBooking", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
