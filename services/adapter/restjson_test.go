package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carhire/models"

	"github.com/stretchr/testify/require"
)

func restAdapterFor(srv *httptest.Server) *RESTAdapter {
	return NewRESTAdapter(models.Source{ID: "src-rest", Endpoint: srv.URL, Token: "tok-123"})
}

func TestRESTAvailabilityFlatOffers(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/availability", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"offers": []map[string]interface{}{
				{
					"vehicle_class":      "ECMN",
					"make_model":         "Ford Fiesta",
					"rate_plan":          "STANDARD",
					"currency":           "GBP",
					"total_price":        134.5,
					"supplier_offer_ref": "HZ-1",
					"status":             "AVAILABLE",
				},
				{
					// No ref and no currency: both get filled in.
					"vehicle_class": "CDMR",
					"total_price":   150.0,
				},
				{
					// Negative price entries are dropped.
					"vehicle_class": "IFAR",
					"total_price":   -1.0,
				},
			},
		})
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	offers, err := a.Availability(context.Background(), mockCriteria(t), "AGR-1")
	require.NoError(t, err)
	require.Len(t, offers, 2)

	require.Equal(t, "HZ-1", offers[0].SupplierOfferRef)
	require.Equal(t, "GBP", offers[0].Currency)

	require.Equal(t, "CDMR", offers[1].VehicleClass)
	require.Equal(t, "GBP", offers[1].Currency)
	require.Contains(t, offers[1].SupplierOfferRef, "GEN-")

	// The search goes over the wire flat, agreement ref included.
	require.Equal(t, "AGR-1", gotBody["agreement_ref"])
	require.Equal(t, "GBMAN", gotBody["pickup_unlocode"])
	require.Equal(t, float64(30), gotBody["driver_age"])
}

func TestRESTAvailabilityDetectsOTAShapedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(availabilityPayload(vehAvailEntry("ECMN", "Ford Fiesta", "OTA-1", 120)))
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	offers, err := a.Availability(context.Background(), mockCriteria(t), "AGR-1")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "OTA-1", offers[0].SupplierOfferRef)
	require.Equal(t, "src-rest", offers[0].SourceID)
}

func TestRESTNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "supplier exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	_, err := a.Availability(context.Background(), mockCriteria(t), "AGR-1")

	var statusErr *AdapterStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "supplier exploded")
}

func TestRESTNonJSONBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	_, err := a.Availability(context.Background(), mockCriteria(t), "AGR-1")
	require.Error(t, err)
}

func TestRESTUnreachableBecomesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	a := restAdapterFor(srv)
	_, err := a.Availability(context.Background(), mockCriteria(t), "AGR-1")

	var unavailable *AdapterUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, "src-rest", unavailable.SourceID)
}

func TestRESTCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Availability(ctx, mockCriteria(t), "AGR-1")
	var unavailable *AdapterUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestRESTBookingCreateFlat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bookings", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "AGR-1", body["agreement_ref"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"supplier_booking_ref": "BK-77",
			"status":               "CONFIRMED",
		})
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	rec, err := a.BookingCreate(context.Background(), models.BookingInput{
		AgreementRef:     "AGR-1",
		SupplierOfferRef: "HZ-1",
	})
	require.NoError(t, err)
	require.Equal(t, "BK-77", rec.SupplierBookingRef)
	require.Equal(t, models.BookingConfirmed, rec.Status)
	require.Equal(t, "HZ-1", rec.SupplierOfferRef)
}

func TestRESTBookingCreateOTAShaped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"VehResRSCore": map[string]interface{}{
				"VehReservation": map[string]interface{}{
					"@attributes": map[string]interface{}{"ReservationStatus": "Confirmed"},
					"VehSegmentCore": map[string]interface{}{
						"ConfID": map[string]interface{}{
							"@attributes": map[string]interface{}{"ID": "CONF-9"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	rec, err := a.BookingCreate(context.Background(), models.BookingInput{
		AgreementRef:     "AGR-1",
		SupplierOfferRef: "HZ-1",
	})
	require.NoError(t, err)
	require.Equal(t, "CONF-9", rec.SupplierBookingRef)
	require.Equal(t, models.BookingConfirmed, rec.Status)
}

func TestRESTLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/locations", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"locations": []string{"GBMAN", "GBGLA"},
		})
	}))
	defer srv.Close()

	a := restAdapterFor(srv)
	locodes, err := a.Locations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"GBMAN", "GBGLA"}, locodes)
}
