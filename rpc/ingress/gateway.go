package ingress

import (
	"context"
	"time"

	agreementRepo "carhire/database/repository/agreement"
	"carhire/models"
	"carhire/rpc"
	"carhire/services/availability"
	"carhire/services/booking"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AgentGateway is the agent-facing RPC surface. Implementations receive the
// authenticated agent id from the call context.
type AgentGateway interface {
	SubmitAvailability(ctx context.Context, req *rpc.SubmitAvailabilityRequest) (*rpc.SubmitAvailabilityReply, error)
	PollAvailability(ctx context.Context, req *rpc.PollAvailabilityRequest) (*rpc.PollAvailabilityReply, error)
	CreateBooking(ctx context.Context, req *rpc.CreateBookingRequest) (*rpc.BookingReply, error)
	ModifyBooking(ctx context.Context, req *rpc.BookingModifyRequest) (*rpc.BookingReply, error)
	CancelBooking(ctx context.Context, req *rpc.BookingCancelRequest) (*rpc.BookingReply, error)
	CheckBooking(ctx context.Context, req *rpc.BookingCheckRequest) (*rpc.BookingReply, error)
	ListAgreements(ctx context.Context, req *rpc.ListAgreementsRequest) (*rpc.ListAgreementsReply, error)
}

// DefaultAgentGateway adapts the availability and booking services onto the
// RPC surface. It mirrors the HTTP handlers one-to-one so both ingress paths
// expose the same semantics.
type DefaultAgentGateway struct {
	Availability availability.Service
	Booking      booking.Service
	Agreements   agreementRepo.AgreementRepository
}

func NewAgentGateway(avail availability.Service, bookings booking.Service, agreements agreementRepo.AgreementRepository) *DefaultAgentGateway {
	return &DefaultAgentGateway{
		Availability: avail,
		Booking:      bookings,
		Agreements:   agreements,
	}
}

func (g *DefaultAgentGateway) SubmitAvailability(ctx context.Context, req *rpc.SubmitAvailabilityRequest) (*rpc.SubmitAvailabilityReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c := req.Criteria
	criteria, err := models.NewAvailabilityCriteria(
		c.PickupLocode, c.DropoffLocode, c.PickupAt, c.DropoffAt,
		c.DriverAge, c.Currency, c.AgreementRefs,
	)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	criteria.WithResidencyCountry(c.ResidencyCountry).WithVehicleClasses(c.VehicleClasses)

	res, err := g.Availability.Submit(ctx, agentID, *criteria)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &rpc.SubmitAvailabilityReply{
		RequestID:         res.RequestID,
		ExpectedSources:   res.ExpectedSources,
		RecommendedPollMS: res.RecommendedPollMS,
	}, nil
}

func (g *DefaultAgentGateway) PollAvailability(ctx context.Context, req *rpc.PollAvailabilityRequest) (*rpc.PollAvailabilityReply, error) {
	if _, err := AgentIDFromContext(ctx); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		return nil, status.Error(codes.InvalidArgument, "request_id is required")
	}
	chunk, err := g.Availability.Poll(ctx, req.RequestID, req.SinceSeq, time.Duration(req.WaitMS)*time.Millisecond)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &rpc.PollAvailabilityReply{
		Items:  chunk.Items,
		Status: chunk.Status,
		Cursor: chunk.Cursor,
	}, nil
}

func (g *DefaultAgentGateway) CreateBooking(ctx context.Context, req *rpc.CreateBookingRequest) (*rpc.BookingReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := g.Booking.Create(ctx, agentID, req.IdempotencyKey, req.Input)
	if err != nil {
		return nil, bookingStatusError(err)
	}
	return &rpc.BookingReply{Record: *rec}, nil
}

func (g *DefaultAgentGateway) ModifyBooking(ctx context.Context, req *rpc.BookingModifyRequest) (*rpc.BookingReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := g.Booking.Modify(ctx, agentID, req.SupplierBookingRef, req.AgreementRef, req.Changes)
	if err != nil {
		return nil, bookingStatusError(err)
	}
	return &rpc.BookingReply{Record: *rec}, nil
}

func (g *DefaultAgentGateway) CancelBooking(ctx context.Context, req *rpc.BookingCancelRequest) (*rpc.BookingReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := g.Booking.Cancel(ctx, agentID, req.SupplierBookingRef, req.AgreementRef)
	if err != nil {
		return nil, bookingStatusError(err)
	}
	return &rpc.BookingReply{Record: *rec}, nil
}

func (g *DefaultAgentGateway) CheckBooking(ctx context.Context, req *rpc.BookingCheckRequest) (*rpc.BookingReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := g.Booking.Check(ctx, agentID, req.SupplierBookingRef, req.AgreementRef)
	if err != nil {
		return nil, bookingStatusError(err)
	}
	return &rpc.BookingReply{Record: *rec}, nil
}

func (g *DefaultAgentGateway) ListAgreements(ctx context.Context, req *rpc.ListAgreementsRequest) (*rpc.ListAgreementsReply, error) {
	agentID, err := AgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	agreements, err := g.Agreements.ListByAgent(agentID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if agreements == nil {
		agreements = []models.Agreement{}
	}
	return &rpc.ListAgreementsReply{Agreements: agreements}, nil
}

// bookingStatusError maps orchestrator errors onto RPC status codes.
func bookingStatusError(err error) error {
	switch err.(type) {
	case *booking.AgreementInvalidError:
		return status.Error(codes.FailedPrecondition, err.Error())
	case *booking.NotFoundError:
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
