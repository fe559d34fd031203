package bookingRepo

import "carhire/models"

// BookingRepository defines data access for booking records. Records are
// created once and transitioned in place; deletion is not part of the
// contract.
type BookingRepository interface {
	// Create persists a new booking record.
	Create(rec *models.BookingRecord) error
	// GetByRef retrieves a booking by its supplier booking reference.
	GetByRef(supplierBookingRef string) (*models.BookingRecord, error)
	// GetByIdempotencyKey retrieves the booking created under the given
	// (agent, idempotency key) pair, if any.
	GetByIdempotencyKey(agentID, key string) (*models.BookingRecord, error)
	// Update replaces the stored record for its supplier booking reference.
	Update(rec *models.BookingRecord) error
}
