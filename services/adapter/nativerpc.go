package adapter

import (
	"context"

	"carhire/models"
	"carhire/rpc"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RPCAdapter talks to a source over the native typed transport. The schema is
// explicit on both ends, so replies map onto the canonical model without any
// attribute-bag unwrapping — this variant is preferred for any source capable
// of it.
type RPCAdapter struct {
	SourceID string
	client   *rpc.SourceClient
}

// NewRPCAdapter wraps an established source connection. The registry owns the
// connection's lifecycle and shares it across adapters for the same source.
func NewRPCAdapter(sourceID string, client *rpc.SourceClient) *RPCAdapter {
	return &RPCAdapter{SourceID: sourceID, client: client}
}

func (a *RPCAdapter) wrapErr(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	default:
		return &AdapterStatusError{
			SourceID: a.SourceID,
			Status:   st.Code().String(),
			Body:     st.Message(),
		}
	}
}

// Locations returns the UN/LOCODEs the source serves.
func (a *RPCAdapter) Locations(ctx context.Context) ([]string, error) {
	reply, err := a.client.GetLocations(ctx, &rpc.LocationsRequest{})
	if err != nil {
		return nil, a.wrapErr(err)
	}
	return reply.Locodes, nil
}

// Availability runs one search under one agreement.
func (a *RPCAdapter) Availability(ctx context.Context, criteria models.AvailabilityCriteria, agreementRef string) ([]models.Offer, error) {
	reply, err := a.client.GetAvailability(ctx, &rpc.AvailabilityRequest{
		AgreementRef: agreementRef,
		Criteria:     criteria,
	})
	if err != nil {
		return nil, a.wrapErr(err)
	}

	offers := reply.Offers
	for i := range offers {
		offers[i].SourceID = a.SourceID
		offers[i].AgreementRef = agreementRef
		if offers[i].SupplierOfferRef == "" {
			name := offers[i].MakeModel
			if name == "" {
				name = offers[i].VehicleClass
			}
			offers[i].SupplierOfferRef = SynthesizeOfferRef(agreementRef, a.SourceID, name, offers[i].TotalPrice, i)
		}
	}
	return offers, nil
}

// BookingCreate creates a supplier-side booking.
func (a *RPCAdapter) BookingCreate(ctx context.Context, input models.BookingInput) (*models.BookingRecord, error) {
	reply, err := a.client.CreateBooking(ctx, &rpc.BookingCreateRequest{
		AgreementRef:     input.AgreementRef,
		SupplierOfferRef: input.SupplierOfferRef,
		Detail:           input.Detail,
	})
	if err != nil {
		return nil, a.wrapErr(err)
	}
	rec := reply.Record
	rec.SourceID = a.SourceID
	return &rec, nil
}

// BookingModify changes an existing booking.
func (a *RPCAdapter) BookingModify(ctx context.Context, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error) {
	reply, err := a.client.ModifyBooking(ctx, &rpc.BookingModifyRequest{
		SupplierBookingRef: supplierBookingRef,
		AgreementRef:       agreementRef,
		Changes:            changes,
	})
	if err != nil {
		return nil, a.wrapErr(err)
	}
	rec := reply.Record
	rec.SourceID = a.SourceID
	return &rec, nil
}

// BookingCancel cancels an existing booking.
func (a *RPCAdapter) BookingCancel(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	reply, err := a.client.CancelBooking(ctx, &rpc.BookingCancelRequest{
		SupplierBookingRef: supplierBookingRef,
		AgreementRef:       agreementRef,
	})
	if err != nil {
		return nil, a.wrapErr(err)
	}
	rec := reply.Record
	rec.SourceID = a.SourceID
	return &rec, nil
}

// BookingCheck fetches the current supplier-side state of a booking.
func (a *RPCAdapter) BookingCheck(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	reply, err := a.client.CheckBooking(ctx, &rpc.BookingCheckRequest{
		SupplierBookingRef: supplierBookingRef,
		AgreementRef:       agreementRef,
	})
	if err != nil {
		return nil, a.wrapErr(err)
	}
	rec := reply.Record
	rec.SourceID = a.SourceID
	return &rec, nil
}
