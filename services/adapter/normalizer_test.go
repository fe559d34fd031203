package adapter

import (
	"strings"
	"testing"

	"carhire/models"

	"github.com/stretchr/testify/require"
)

func vehAvailEntry(class, name, ref string, price float64) map[string]interface{} {
	core := map[string]interface{}{
		"@attributes": map[string]interface{}{"Status": "Available"},
		"Vehicle": map[string]interface{}{
			"@attributes": map[string]interface{}{"Code": class, "TransmissionType": "Manual"},
			"VehMakeModel": map[string]interface{}{
				"@attributes": map[string]interface{}{"Name": name},
			},
		},
		"RentalRate": map[string]interface{}{
			"RateQualifier": map[string]interface{}{
				"@attributes": map[string]interface{}{"RateQualifier": "STANDARD"},
			},
		},
		"TotalCharge": map[string]interface{}{
			"@attributes": map[string]interface{}{"RateTotalAmount": price, "CurrencyCode": "GBP"},
		},
	}
	if ref != "" {
		core["Reference"] = map[string]interface{}{
			"@attributes": map[string]interface{}{"ID": ref},
		}
	}
	return map[string]interface{}{"VehAvailCore": core}
}

func availabilityPayload(vehAvail interface{}) map[string]interface{} {
	return map[string]interface{}{
		"VehAvailRSCore": map[string]interface{}{
			"VehRentalCore": map[string]interface{}{
				"PickUpLocation": map[string]interface{}{
					"@attributes": map[string]interface{}{"LocationCode": "GBMAN"},
				},
				"ReturnLocation": map[string]interface{}{
					"@attributes": map[string]interface{}{"LocationCode": "GBGLA"},
				},
			},
			"VehVendorAvails": map[string]interface{}{
				"VehVendorAvail": map[string]interface{}{
					"VehAvails": map[string]interface{}{
						"VehAvail": vehAvail,
					},
				},
			},
		},
	}
}

func TestAsListToleratesScalarAndList(t *testing.T) {
	require.Nil(t, AsList(nil))
	require.Len(t, AsList("one"), 1)
	require.Len(t, AsList([]interface{}{"a", "b"}), 2)
}

func TestSynthesizeOfferRefIsDeterministic(t *testing.T) {
	a := SynthesizeOfferRef("AGR-2024-UK-HERTZ", "src-hertz-uk", "Ford Fiesta", 134.50, 0)
	b := SynthesizeOfferRef("AGR-2024-UK-HERTZ", "src-hertz-uk", "Ford Fiesta", 134.50, 0)
	require.Equal(t, a, b)
	require.True(t, strings.HasPrefix(a, "GEN-AGR-2024-src-he-0-"))

	c := SynthesizeOfferRef("AGR-2024-UK-HERTZ", "src-hertz-uk", "Ford Fiesta", 134.50, 1)
	require.NotEqual(t, a, c)

	d := SynthesizeOfferRef("AGR-2024-UK-HERTZ", "src-hertz-uk", "Ford Fiesta", 135.00, 0)
	require.NotEqual(t, a, d)
}

func TestNormalizeOTAAvailabilitySingularNodeCollapse(t *testing.T) {
	payload := availabilityPayload(vehAvailEntry("ECMN", "Ford Fiesta", "HZ-REF-1", 134.5))

	offers := NormalizeOTAAvailability(payload, "src-1", "AGR-1", "EUR")
	require.Len(t, offers, 1)

	offer := offers[0]
	require.Equal(t, "src-1", offer.SourceID)
	require.Equal(t, "AGR-1", offer.AgreementRef)
	require.Equal(t, "ECMN", offer.VehicleClass)
	require.Equal(t, "Ford Fiesta", offer.MakeModel)
	require.Equal(t, "STANDARD", offer.RatePlan)
	require.Equal(t, "GBP", offer.Currency)
	require.Equal(t, 134.5, offer.TotalPrice)
	require.Equal(t, "HZ-REF-1", offer.SupplierOfferRef)
	require.Equal(t, models.OfferAvailable, offer.Status)
	require.Equal(t, "GBMAN", offer.Extras["pickup_location"])
	require.Equal(t, "GBGLA", offer.Extras["return_location"])
}

func TestNormalizeOTAAvailabilityRepeatedNodes(t *testing.T) {
	payload := availabilityPayload([]interface{}{
		vehAvailEntry("ECMN", "Ford Fiesta", "REF-A", 100),
		vehAvailEntry("CDMR", "VW Golf", "REF-B", 150),
	})

	offers := NormalizeOTAAvailability(payload, "src-1", "AGR-1", "EUR")
	require.Len(t, offers, 2)
	require.Equal(t, "REF-A", offers[0].SupplierOfferRef)
	require.Equal(t, "REF-B", offers[1].SupplierOfferRef)
}

func TestNormalizeOTAAvailabilityIsolatesMalformedEntries(t *testing.T) {
	payload := availabilityPayload([]interface{}{
		map[string]interface{}{"garbage": true},
		vehAvailEntry("CDMR", "VW Golf", "", 150),
	})

	offers := NormalizeOTAAvailability(payload, "src-1", "AGR-1", "EUR")
	require.Len(t, offers, 1)
	require.Equal(t, "CDMR", offers[0].VehicleClass)
	// The surviving entry keeps its position in the response: ordinal 1.
	require.Contains(t, offers[0].SupplierOfferRef, "-1-")
}

func TestNormalizeOTAAvailabilityRejectsNegativePrice(t *testing.T) {
	payload := availabilityPayload(vehAvailEntry("ECMN", "Ford Fiesta", "REF-A", -5))
	offers := NormalizeOTAAvailability(payload, "src-1", "AGR-1", "EUR")
	require.Empty(t, offers)
}

func TestNormalizeOTAAvailabilityWrappedEnvelope(t *testing.T) {
	inner := availabilityPayload(vehAvailEntry("IFAR", "Skoda Octavia", "REF-C", 200))
	payload := map[string]interface{}{
		"OTA_VehAvailRateRS": map[string]interface{}{
			"VehAvailRSCore": inner["VehAvailRSCore"],
		},
	}

	offers := NormalizeOTAAvailability(payload, "src-1", "AGR-1", "EUR")
	require.Len(t, offers, 1)
	require.Equal(t, "IFAR", offers[0].VehicleClass)
}

func TestNormalizeOTAAvailabilityVehClassFallback(t *testing.T) {
	entry := map[string]interface{}{
		"VehAvailCore": map[string]interface{}{
			"Vehicle": map[string]interface{}{
				"VehClass": map[string]interface{}{
					"@attributes": map[string]interface{}{"Size": "FULLSIZE"},
				},
			},
			"TotalCharge": map[string]interface{}{
				"@attributes": map[string]interface{}{"RateTotalAmount": "99.90"},
			},
		},
	}
	offers := NormalizeOTAAvailability(availabilityPayload(entry), "src-1", "AGR-1", "EUR")
	require.Len(t, offers, 1)
	require.Equal(t, "FULLSIZE", offers[0].VehicleClass)
	require.Equal(t, 99.9, offers[0].TotalPrice)
	// No currency on the charge node: the search currency applies.
	require.Equal(t, "EUR", offers[0].Currency)
	require.True(t, strings.HasPrefix(offers[0].SupplierOfferRef, "GEN-"))
}

func TestNormalizeOTABookingConfirmed(t *testing.T) {
	payload := map[string]interface{}{
		"VehResRSCore": map[string]interface{}{
			"VehReservation": map[string]interface{}{
				"@attributes": map[string]interface{}{"ReservationStatus": "Confirmed"},
				"VehSegmentCore": map[string]interface{}{
					"ConfID": map[string]interface{}{
						"@attributes": map[string]interface{}{"ID": "CONF-123"},
					},
				},
			},
		},
	}

	rec := NormalizeOTABooking(payload, "src-1", "AGR-1", "OFFER-1")
	require.Equal(t, "CONF-123", rec.SupplierBookingRef)
	require.Equal(t, models.BookingConfirmed, rec.Status)
	require.Equal(t, "AGR-1", rec.AgreementRef)
	require.Equal(t, "OFFER-1", rec.SupplierOfferRef)
}

func TestNormalizeOTABookingSynthesizesMissingConfID(t *testing.T) {
	rec := NormalizeOTABooking(map[string]interface{}{}, "src-1", "AGR-1", "OFFER-1")
	require.True(t, strings.HasPrefix(rec.SupplierBookingRef, "BKG-"))
	require.Equal(t, models.BookingRequested, rec.Status)
}

func TestMapReservationStatus(t *testing.T) {
	require.Equal(t, models.BookingConfirmed, mapReservationStatus("Reserved"))
	require.Equal(t, models.BookingCancelled, mapReservationStatus("cancelled"))
	require.Equal(t, models.BookingFailed, mapReservationStatus("REJECTED"))
	require.Equal(t, models.BookingRequested, mapReservationStatus("Pending"))
}
