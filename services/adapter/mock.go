package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"carhire/models"
)

// MockAdapter fabricates deterministic offers seeded from the search itself.
// It backs tests and non-production sandboxes; the registry refuses to select
// it in production unless explicitly overridden.
type MockAdapter struct {
	SourceID string
}

func NewMockAdapter(src models.Source) *MockAdapter {
	return &MockAdapter{SourceID: src.ID}
}

// mockFleet is the fixed fleet every mock source quotes, in stable order.
var mockFleet = []struct {
	Class     string
	MakeModel string
	RatePlan  string
	BaseRate  float64
}{
	{"ECMN", "Ford Fiesta", "STANDARD", 24},
	{"CDMR", "VW Golf", "STANDARD", 35},
	{"IFAR", "Skoda Octavia", "FULLY_FLEX", 52},
}

func seedFactor(parts ...string) float64 {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	// Map the first 8 bytes onto [0, 1).
	n := binary.BigEndian.Uint64(sum[:8])
	return float64(n%10000) / 10000
}

// Locations returns the UN/LOCODEs the source serves.
func (a *MockAdapter) Locations(ctx context.Context) ([]string, error) {
	return []string{"GBMAN", "GBGLA", "GBLON", "IEDUB", "FRPAR", "DEBER"}, nil
}

// Availability fabricates one offer per fleet entry. The same criteria always
// yield the same offers, refs included.
func (a *MockAdapter) Availability(ctx context.Context, criteria models.AvailabilityCriteria, agreementRef string) ([]models.Offer, error) {
	days := criteria.RentalDays()
	offers := make([]models.Offer, 0, len(mockFleet))
	for i, v := range mockFleet {
		factor := seedFactor(criteria.PickupLocode, criteria.DropoffLocode, agreementRef, v.Class)
		daily := v.BaseRate * (1 + factor/2)
		price := float64(int(daily*float64(days)*100)) / 100

		offer := models.Offer{
			SourceID:         a.SourceID,
			AgreementRef:     agreementRef,
			VehicleClass:     v.Class,
			MakeModel:        v.MakeModel,
			RatePlan:         v.RatePlan,
			Currency:         criteria.Currency,
			TotalPrice:       price,
			SupplierOfferRef: SynthesizeOfferRef(agreementRef, a.SourceID, v.MakeModel, price, i),
			Status:           models.OfferAvailable,
			Extras: map[string]interface{}{
				"terms_included":  []interface{}{"CDW", "THIRD_PARTY_LIABILITY"},
				"pickup_location": criteria.PickupLocode,
				"return_location": criteria.DropoffLocode,
			},
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// BookingCreate fabricates a confirmed booking with a ref derived from the
// offer being booked, so retried creates converge on the same ref.
func (a *MockAdapter) BookingCreate(ctx context.Context, input models.BookingInput) (*models.BookingRecord, error) {
	h := sha256.Sum256([]byte(input.AgreementRef + "|" + input.SupplierOfferRef))
	now := time.Now().UTC()
	return &models.BookingRecord{
		SupplierBookingRef: fmt.Sprintf("MOCK-%x", h[:6]),
		Status:             models.BookingConfirmed,
		AgreementRef:       input.AgreementRef,
		SupplierOfferRef:   input.SupplierOfferRef,
		SourceID:           a.SourceID,
		Detail:             input.Detail,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// BookingModify echoes the booking back with the changes applied to detail.
func (a *MockAdapter) BookingModify(ctx context.Context, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error) {
	now := time.Now().UTC()
	return &models.BookingRecord{
		SupplierBookingRef: supplierBookingRef,
		Status:             models.BookingConfirmed,
		AgreementRef:       agreementRef,
		SourceID:           a.SourceID,
		Detail:             changes,
		UpdatedAt:          now,
	}, nil
}

// BookingCancel reports the booking cancelled.
func (a *MockAdapter) BookingCancel(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	return &models.BookingRecord{
		SupplierBookingRef: supplierBookingRef,
		Status:             models.BookingCancelled,
		AgreementRef:       agreementRef,
		SourceID:           a.SourceID,
		UpdatedAt:          time.Now().UTC(),
	}, nil
}

// BookingCheck reports the booking confirmed; the mock holds no state.
func (a *MockAdapter) BookingCheck(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	return &models.BookingRecord{
		SupplierBookingRef: supplierBookingRef,
		Status:             models.BookingConfirmed,
		AgreementRef:       agreementRef,
		SourceID:           a.SourceID,
		UpdatedAt:          time.Now().UTC(),
	}, nil
}
