package models

import "time"

// Booking lifecycle states.
const (
	BookingRequested = "REQUESTED"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingFailed    = "FAILED"
)

// BookingRecord is the broker-side view of one supplier booking. Records are
// transitioned by modify/cancel, never deleted.
type BookingRecord struct {
	SupplierBookingRef string                 `json:"supplier_booking_ref" bson:"supplierBookingRef"`
	Status             string                 `json:"status" bson:"status"`
	AgreementRef       string                 `json:"agreement_ref" bson:"agreementRef"`
	SupplierOfferRef   string                 `json:"supplier_offer_ref" bson:"supplierOfferRef"`
	SourceID           string                 `json:"source_id" bson:"sourceId"`
	AgentID            string                 `json:"agent_id" bson:"agentId"`
	IdempotencyKey     string                 `json:"-" bson:"idempotencyKey,omitempty"`
	Detail             map[string]interface{} `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt          time.Time              `json:"created_at" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updated_at" bson:"updatedAt"`
}

// BookingInput carries everything an adapter needs to create a booking with a
// supplier. AgreementRef always goes on the wire: suppliers scope bookings by
// agreement, not by a global booking id.
type BookingInput struct {
	AgreementRef     string                 `json:"agreement_ref"`
	SupplierOfferRef string                 `json:"supplier_offer_ref"`
	Detail           map[string]interface{} `json:"detail,omitempty"`
}
