package rpc

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// WithBearer attaches a bearer token to the outgoing call metadata.
func WithBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

// BearerFromIncoming extracts the bearer token from incoming call metadata.
// Returns "" when absent.
func BearerFromIncoming(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	const prefix = "Bearer "
	if len(vals[0]) > len(prefix) && vals[0][:len(prefix)] == prefix {
		return vals[0][len(prefix):]
	}
	return ""
}
