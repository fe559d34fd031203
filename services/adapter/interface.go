package adapter

import (
	"context"

	"carhire/models"
)

// SupplierAdapter is the capability interface every transport variant
// implements. One instance talks to exactly one source.
//
// Every booking-mutating call carries agreement_ref on the wire: suppliers
// scope bookings by agreement, not by a global booking id.
type SupplierAdapter interface {
	// Locations returns the UN/LOCODEs the source serves.
	Locations(ctx context.Context) ([]string, error)
	// Availability runs one search under one agreement and returns
	// normalized offers.
	Availability(ctx context.Context, criteria models.AvailabilityCriteria, agreementRef string) ([]models.Offer, error)
	// BookingCreate creates a supplier-side booking.
	BookingCreate(ctx context.Context, input models.BookingInput) (*models.BookingRecord, error)
	// BookingModify changes an existing booking.
	BookingModify(ctx context.Context, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error)
	// BookingCancel cancels an existing booking.
	BookingCancel(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error)
	// BookingCheck fetches the current supplier-side state of a booking.
	BookingCheck(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error)
}
