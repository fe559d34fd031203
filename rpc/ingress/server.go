package ingress

import (
	"context"

	"carhire/rpc"
	"carhire/utils"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified RPC service the gateway registers as.
const ServiceName = "carhire.agent.v1.AgentGateway"

type contextKey string

const agentIDKey contextKey = "agentID"

// AgentIDFromContext returns the authenticated agent id placed on the call
// context by the auth interceptor.
func AgentIDFromContext(ctx context.Context) (string, error) {
	agentID, ok := ctx.Value(agentIDKey).(string)
	if !ok || agentID == "" {
		return "", status.Error(codes.Unauthenticated, "no authenticated agent on call")
	}
	return agentID, nil
}

// AuthInterceptor validates the bearer token on every call and stamps the
// agent id onto the context.
func AuthInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	token := rpc.BearerFromIncoming(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}
	agentID, err := utils.ExtractAgentIDFromToken(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
	}
	return handler(context.WithValue(ctx, agentIDKey, agentID), req)
}

// NewServer builds the ingress gRPC server: JSON codec on the wire, bearer
// auth on every call, the gateway registered under ServiceName.
func NewServer(gw AgentGateway) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.JSONCodec{}),
		grpc.UnaryInterceptor(AuthInterceptor),
	)
	srv.RegisterService(&agentGatewayServiceDesc, gw)
	return srv
}

func unaryHandler[Req any, Reply any](
	method string,
	call func(AgentGateway, context.Context, *Req) (*Reply, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AgentGateway), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(AgentGateway), ctx, req.(*Req))
			})
		},
	}
}

// agentGatewayServiceDesc is the hand-maintained service descriptor. The wire
// schema lives in carhire/rpc; both ends agree on the JSON codec, so no
// generated stubs are involved.
var agentGatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AgentGateway)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("SubmitAvailability", AgentGateway.SubmitAvailability),
		unaryHandler("PollAvailability", AgentGateway.PollAvailability),
		unaryHandler("CreateBooking", AgentGateway.CreateBooking),
		unaryHandler("ModifyBooking", AgentGateway.ModifyBooking),
		unaryHandler("CancelBooking", AgentGateway.CancelBooking),
		unaryHandler("CheckBooking", AgentGateway.CheckBooking),
		unaryHandler("ListAgreements", AgentGateway.ListAgreements),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carhire/rpc",
}
