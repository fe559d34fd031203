package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carhire/models"
	"carhire/utils"

	"go.uber.org/zap"
)

// RESTAdapter talks plain JSON-over-HTTP to a supplier. Some suppliers on
// this transport still answer with an OTA-shaped body; the response is probed
// structurally and routed through the normalizer when the vendor-availability
// core node is present.
type RESTAdapter struct {
	SourceID string
	BaseURL  string
	Token    string
	Client   *http.Client
}

// NewRESTAdapter builds the REST/JSON variant for one source.
func NewRESTAdapter(src models.Source) *RESTAdapter {
	return &RESTAdapter{
		SourceID: src.ID,
		BaseURL:  strings.TrimSuffix(src.Endpoint, "/"),
		Token:    src.Token,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *RESTAdapter) doRequest(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AdapterUnavailableError{SourceID: a.SourceID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AdapterStatusError{
			SourceID:   a.SourceID,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
		}
	}

	// Some supplier gateways mislabel the content type; attempt a JSON parse
	// of the text body before giving up.
	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		trimmed := strings.TrimSpace(string(respBody))
		if err2 := json.Unmarshal([]byte(trimmed), &result); err2 != nil {
			return nil, fmt.Errorf("source %s returned a non-JSON body: %w", a.SourceID, err)
		}
	}
	return result, nil
}

// Locations returns the UN/LOCODEs the source serves.
func (a *RESTAdapter) Locations(ctx context.Context) ([]string, error) {
	result, err := a.doRequest(ctx, http.MethodGet, "/locations", nil)
	if err != nil {
		return nil, err
	}
	var locodes []string
	for _, v := range AsList(result["locations"]) {
		if s := asString(v); s != "" {
			locodes = append(locodes, s)
		}
	}
	return locodes, nil
}

// Availability runs one search under one agreement.
func (a *RESTAdapter) Availability(ctx context.Context, criteria models.AvailabilityCriteria, agreementRef string) ([]models.Offer, error) {
	reqBody := map[string]interface{}{
		"pickup_unlocode":   criteria.PickupLocode,
		"dropoff_unlocode":  criteria.DropoffLocode,
		"pickup_iso":        criteria.PickupAt.Format(time.RFC3339),
		"dropoff_iso":       criteria.DropoffAt.Format(time.RFC3339),
		"driver_age":        criteria.DriverAge,
		"residency_country": criteria.ResidencyCountry,
		"vehicle_classes":   criteria.VehicleClasses,
		"currency":          criteria.Currency,
		"agreement_ref":     agreementRef,
	}

	result, err := a.doRequest(ctx, http.MethodPost, "/availability", reqBody)
	if err != nil {
		return nil, err
	}

	// Structural probe: an OTA-shaped body carries the vendor-availability
	// core node, possibly under the response envelope.
	if isOTAShaped(result) {
		return NormalizeOTAAvailability(result, a.SourceID, agreementRef, criteria.Currency), nil
	}
	return a.mapFlatOffers(result, agreementRef, criteria.Currency), nil
}

func isOTAShaped(payload map[string]interface{}) bool {
	if asMap(payload["VehAvailRSCore"]) != nil {
		return true
	}
	if wrapped := asMap(payload["OTA_VehAvailRateRS"]); wrapped != nil {
		return asMap(wrapped["VehAvailRSCore"]) != nil
	}
	return false
}

func (a *RESTAdapter) mapFlatOffers(result map[string]interface{}, agreementRef, fallbackCurrency string) []models.Offer {
	logger := utils.GetLogger()

	var offers []models.Offer
	for ordinal, v := range AsList(result["offers"]) {
		entry := asMap(v)
		if entry == nil {
			logger.Warn("skipping malformed flat offer entry",
				zap.String("sourceID", a.SourceID), zap.Int("ordinal", ordinal))
			continue
		}
		offer := models.Offer{
			SourceID:         a.SourceID,
			AgreementRef:     agreementRef,
			VehicleClass:     asString(entry["vehicle_class"]),
			MakeModel:        asString(entry["make_model"]),
			RatePlan:         asString(entry["rate_plan"]),
			Currency:         asString(entry["currency"]),
			TotalPrice:       asFloat(entry["total_price"]),
			SupplierOfferRef: asString(entry["supplier_offer_ref"]),
			Status:           asString(entry["status"]),
			Extras:           asMap(entry["extras"]),
		}
		if offer.Currency == "" {
			offer.Currency = fallbackCurrency
		}
		if offer.Status == "" {
			offer.Status = models.OfferAvailable
		}
		if offer.TotalPrice < 0 {
			logger.Warn("skipping flat offer with negative price",
				zap.String("sourceID", a.SourceID), zap.Int("ordinal", ordinal))
			continue
		}
		if offer.SupplierOfferRef == "" {
			name := offer.MakeModel
			if name == "" {
				name = offer.VehicleClass
			}
			offer.SupplierOfferRef = SynthesizeOfferRef(agreementRef, a.SourceID, name, offer.TotalPrice, ordinal)
		}
		offers = append(offers, offer)
	}
	return offers
}

// BookingCreate creates a supplier-side booking.
func (a *RESTAdapter) BookingCreate(ctx context.Context, input models.BookingInput) (*models.BookingRecord, error) {
	result, err := a.doRequest(ctx, http.MethodPost, "/bookings", map[string]interface{}{
		"agreement_ref":      input.AgreementRef,
		"supplier_offer_ref": input.SupplierOfferRef,
		"detail":             input.Detail,
	})
	if err != nil {
		return nil, err
	}
	return a.mapBookingResponse(result, input.AgreementRef, input.SupplierOfferRef), nil
}

// BookingModify changes an existing booking.
func (a *RESTAdapter) BookingModify(ctx context.Context, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error) {
	result, err := a.doRequest(ctx, http.MethodPost, "/bookings/modify", map[string]interface{}{
		"supplier_booking_ref": supplierBookingRef,
		"agreement_ref":        agreementRef,
		"changes":              changes,
	})
	if err != nil {
		return nil, err
	}
	return a.mapBookingResponse(result, agreementRef, ""), nil
}

// BookingCancel cancels an existing booking.
func (a *RESTAdapter) BookingCancel(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	result, err := a.doRequest(ctx, http.MethodPost, "/bookings/cancel", map[string]interface{}{
		"supplier_booking_ref": supplierBookingRef,
		"agreement_ref":        agreementRef,
	})
	if err != nil {
		return nil, err
	}
	return a.mapBookingResponse(result, agreementRef, ""), nil
}

// BookingCheck fetches the current supplier-side state of a booking.
func (a *RESTAdapter) BookingCheck(ctx context.Context, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	result, err := a.doRequest(ctx, http.MethodPost, "/bookings/check", map[string]interface{}{
		"supplier_booking_ref": supplierBookingRef,
		"agreement_ref":        agreementRef,
	})
	if err != nil {
		return nil, err
	}
	return a.mapBookingResponse(result, agreementRef, ""), nil
}

func (a *RESTAdapter) mapBookingResponse(result map[string]interface{}, agreementRef, supplierOfferRef string) *models.BookingRecord {
	// OTA-shaped booking responses appear on this transport too.
	if asMap(result["VehResRSCore"]) != nil || asMap(result["OTA_VehResRS"]) != nil {
		return NormalizeOTABooking(result, a.SourceID, agreementRef, supplierOfferRef)
	}

	rec := &models.BookingRecord{
		SupplierBookingRef: asString(result["supplier_booking_ref"]),
		Status:             asString(result["status"]),
		AgreementRef:       agreementRef,
		SupplierOfferRef:   supplierOfferRef,
		SourceID:           a.SourceID,
		Detail:             asMap(result["detail"]),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if rec.SupplierOfferRef == "" {
		rec.SupplierOfferRef = asString(result["supplier_offer_ref"])
	}
	if rec.Status == "" {
		rec.Status = models.BookingRequested
	}
	return rec
}
