package ingress

import (
	"context"
	"testing"
	"time"

	agreementRepo "carhire/database/repository/agreement"
	"carhire/models"
	"carhire/rpc"
	"carhire/services/availability"
	"carhire/utils"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// stubAvailability satisfies availability.Service with canned replies.
type stubAvailability struct {
	submitted models.AvailabilityCriteria
	agentID   string
}

func (s *stubAvailability) Submit(ctx context.Context, agentID string, criteria models.AvailabilityCriteria) (*availability.SubmitResult, error) {
	s.agentID = agentID
	s.submitted = criteria
	return &availability.SubmitResult{RequestID: "req-1", ExpectedSources: 2, RecommendedPollMS: 500}, nil
}

func (s *stubAvailability) Poll(ctx context.Context, requestID string, sinceSeq int64, wait time.Duration) (*availability.PollChunk, error) {
	return &availability.PollChunk{
		Items:  []models.Offer{{SupplierOfferRef: "REF-1"}},
		Status: models.ChunkComplete,
		Cursor: sinceSeq + 1,
	}, nil
}

func authedContext(t *testing.T, agentID string) context.Context {
	t.Helper()
	token, err := utils.GenerateToken(agentID, time.Hour)
	require.NoError(t, err)
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(context.Background(), md)
}

func passthrough(ctx context.Context, req interface{}) (interface{}, error) {
	return AgentIDFromContext(ctx)
}

func interceptorInfo() *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: "/" + ServiceName + "/SubmitAvailability"}
}

func TestAuthInterceptorStampsAgentID(t *testing.T) {
	got, err := AuthInterceptor(authedContext(t, "agent-42"), nil, interceptorInfo(), passthrough)
	require.NoError(t, err)
	require.Equal(t, "agent-42", got)
}

func TestAuthInterceptorRejectsMissingToken(t *testing.T) {
	_, err := AuthInterceptor(context.Background(), nil, interceptorInfo(), passthrough)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptorRejectsBadToken(t *testing.T) {
	md := metadata.Pairs("authorization", "Bearer not-a-jwt")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	_, err := AuthInterceptor(ctx, nil, interceptorInfo(), passthrough)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAgentIDFromContextWithoutAuth(t *testing.T) {
	_, err := AgentIDFromContext(context.Background())
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGatewaySubmitAvailability(t *testing.T) {
	avail := &stubAvailability{}
	gw := NewAgentGateway(avail, nil, agreementRepo.NewMemoryAgreementRepo())

	ctx := context.WithValue(context.Background(), agentIDKey, "agent-1")
	pickup := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	reply, err := gw.SubmitAvailability(ctx, &rpc.SubmitAvailabilityRequest{
		Criteria: models.AvailabilityCriteria{
			PickupLocode:  "gbman",
			DropoffLocode: "GBGLA",
			PickupAt:      pickup,
			DropoffAt:     pickup.Add(48 * time.Hour),
			DriverAge:     30,
			Currency:      "GBP",
			AgreementRefs: []string{"AGR-1"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "req-1", reply.RequestID)
	require.Equal(t, 2, reply.ExpectedSources)

	// The gateway re-validates and normalizes before dispatching.
	require.Equal(t, "agent-1", avail.agentID)
	require.Equal(t, "GBMAN", avail.submitted.PickupLocode)
}

func TestGatewaySubmitAvailabilityRejectsBadCriteria(t *testing.T) {
	gw := NewAgentGateway(&stubAvailability{}, nil, agreementRepo.NewMemoryAgreementRepo())
	ctx := context.WithValue(context.Background(), agentIDKey, "agent-1")

	_, err := gw.SubmitAvailability(ctx, &rpc.SubmitAvailabilityRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGatewayListAgreements(t *testing.T) {
	repo := agreementRepo.NewMemoryAgreementRepo()
	repo.Put(models.Agreement{Ref: "AGR-1", AgentID: "agent-1", Status: models.AgreementActive})
	repo.Put(models.Agreement{Ref: "AGR-2", AgentID: "agent-2", Status: models.AgreementActive})

	gw := NewAgentGateway(&stubAvailability{}, nil, repo)
	ctx := context.WithValue(context.Background(), agentIDKey, "agent-1")

	reply, err := gw.ListAgreements(ctx, &rpc.ListAgreementsRequest{})
	require.NoError(t, err)
	require.Len(t, reply.Agreements, 1)
	require.Equal(t, "AGR-1", reply.Agreements[0].Ref)
}

func TestGatewayRequiresAuthenticatedAgent(t *testing.T) {
	gw := NewAgentGateway(&stubAvailability{}, nil, agreementRepo.NewMemoryAgreementRepo())

	_, err := gw.PollAvailability(context.Background(), &rpc.PollAvailabilityRequest{RequestID: "req-1"})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}
