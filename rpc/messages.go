package rpc

import "carhire/models"

// Source-facing service messages (carhire.source.v1.SourceService). The
// schema is explicit on both ends, so replies map onto the canonical model
// without any attribute-bag unwrapping.

type LocationsRequest struct {
	AgreementRef string `json:"agreement_ref"`
}

type LocationsReply struct {
	Locodes []string `json:"locodes"`
}

type AvailabilityRequest struct {
	AgreementRef string                      `json:"agreement_ref"`
	Criteria     models.AvailabilityCriteria `json:"criteria"`
}

type AvailabilityReply struct {
	Offers []models.Offer `json:"offers"`
}

type BookingCreateRequest struct {
	AgreementRef     string                 `json:"agreement_ref"`
	SupplierOfferRef string                 `json:"supplier_offer_ref"`
	Detail           map[string]interface{} `json:"detail,omitempty"`
}

type BookingModifyRequest struct {
	SupplierBookingRef string                 `json:"supplier_booking_ref"`
	AgreementRef       string                 `json:"agreement_ref"`
	Changes            map[string]interface{} `json:"changes,omitempty"`
}

type BookingCancelRequest struct {
	SupplierBookingRef string `json:"supplier_booking_ref"`
	AgreementRef       string `json:"agreement_ref"`
}

type BookingCheckRequest struct {
	SupplierBookingRef string `json:"supplier_booking_ref"`
	AgreementRef       string `json:"agreement_ref"`
}

type BookingReply struct {
	Record models.BookingRecord `json:"record"`
}

// Agent-facing ingress messages (carhire.agent.v1.AgentGateway).

type SubmitAvailabilityRequest struct {
	Criteria models.AvailabilityCriteria `json:"criteria"`
}

type SubmitAvailabilityReply struct {
	RequestID         string `json:"request_id"`
	ExpectedSources   int    `json:"expected_sources"`
	RecommendedPollMS int    `json:"recommended_poll_ms"`
}

type PollAvailabilityRequest struct {
	RequestID string `json:"request_id"`
	SinceSeq  int64  `json:"since_seq"`
	WaitMS    int    `json:"wait_ms"`
}

type PollAvailabilityReply struct {
	Items  []models.Offer `json:"items"`
	Status string         `json:"status"`
	Cursor int64          `json:"cursor"`
}

type CreateBookingRequest struct {
	IdempotencyKey string              `json:"idempotency_key"`
	Input          models.BookingInput `json:"input"`
}

type ListAgreementsRequest struct{}

type ListAgreementsReply struct {
	Agreements []models.Agreement `json:"agreements"`
}
