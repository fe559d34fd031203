package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carhire/models"
	"carhire/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The normalizer turns OTA-style supplier responses into canonical records.
// These payloads come out of hand-written XML-to-JSON bridges, so the walk
// has to tolerate two structural quirks uniformly: a repeatable node collapses
// to a bare object when exactly one child exists, and scalar fields live under
// a nested attribute map instead of on the node itself.

// AsList coerces a maybe-scalar, maybe-list value into a list. XML
// serialization singularizes repeatable nodes with exactly one child; every
// repeatable OTA node must be read through this.
func AsList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{v}
	}
}

// attr looks a scalar field up through one level of attribute-map
// indirection: node["@attributes"][key] first, then node[key]. Missing keys
// yield nil, never a panic.
func attr(node map[string]interface{}, key string) interface{} {
	if attrs, ok := node["@attributes"].(map[string]interface{}); ok {
		if v, ok := attrs[key]; ok {
			return v
		}
	}
	return node[key]
}

func attrString(node map[string]interface{}, key string) string {
	return asString(attr(node, key))
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// SynthesizeOfferRef computes a stable reference for an offer the supplier
// did not reference itself. Identical input yields an identical ref, so a
// retried search books the same quote; the ordinal keeps distinct offers in
// one response distinct.
func SynthesizeOfferRef(agreementRef, sourceID, vehicleName string, price float64, ordinal int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%d", agreementRef, vehicleName, price, ordinal)))
	short := hex.EncodeToString(h[:])[:10]
	return fmt.Sprintf("GEN-%s-%s-%d-%s", prefix(agreementRef, 8), prefix(sourceID, 6), ordinal, short)
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// NormalizeOTAAvailability walks an OTA-shaped availability payload (either
// the full response or the VehAvailRSCore node) and returns canonical offers.
// A malformed entry fails that one offer, not the response: it is logged and
// skipped.
func NormalizeOTAAvailability(payload map[string]interface{}, sourceID, agreementRef, fallbackCurrency string) []models.Offer {
	logger := utils.GetLogger()

	core := asMap(payload["VehAvailRSCore"])
	if core == nil {
		if wrapped := asMap(payload["OTA_VehAvailRateRS"]); wrapped != nil {
			core = asMap(wrapped["VehAvailRSCore"])
		}
	}
	if core == nil {
		// The caller probed for the OTA shape before dispatching here.
		return nil
	}

	var pickupLoc, returnLoc string
	if rental := asMap(core["VehRentalCore"]); rental != nil {
		if loc := asMap(rental["PickUpLocation"]); loc != nil {
			pickupLoc = attrString(loc, "LocationCode")
		}
		if loc := asMap(rental["ReturnLocation"]); loc != nil {
			returnLoc = attrString(loc, "LocationCode")
		}
	}

	var offers []models.Offer
	ordinal := 0
	vendorAvails := asMap(core["VehVendorAvails"])
	for _, va := range AsList(vendorAvails["VehVendorAvail"]) {
		vendorAvail := asMap(va)
		if vendorAvail == nil {
			continue
		}
		avails := asMap(vendorAvail["VehAvails"])
		for _, a := range AsList(avails["VehAvail"]) {
			entry := asMap(a)
			offer, err := normalizeVehAvail(entry, sourceID, agreementRef, fallbackCurrency, ordinal)
			if err != nil {
				logger.Warn("skipping malformed offer entry",
					zap.String("sourceID", sourceID),
					zap.Int("ordinal", ordinal),
					zap.Error(err))
				ordinal++
				continue
			}
			if pickupLoc != "" {
				offer.Extras["pickup_location"] = pickupLoc
			}
			if returnLoc != "" {
				offer.Extras["return_location"] = returnLoc
			}
			offers = append(offers, *offer)
			ordinal++
		}
	}
	return offers
}

func normalizeVehAvail(entry map[string]interface{}, sourceID, agreementRef, fallbackCurrency string, ordinal int) (*models.Offer, error) {
	if entry == nil {
		return nil, fmt.Errorf("offer entry is not an object")
	}
	avail := asMap(entry["VehAvailCore"])
	if avail == nil {
		return nil, fmt.Errorf("offer entry has no VehAvailCore")
	}

	offer := &models.Offer{
		SourceID:     sourceID,
		AgreementRef: agreementRef,
		Currency:     fallbackCurrency,
		Status:       models.OfferAvailable,
		Extras:       make(map[string]interface{}),
	}
	if status := attrString(avail, "Status"); status != "" {
		offer.Status = status
	}

	vehicleName := ""
	if vehicle := asMap(avail["Vehicle"]); vehicle != nil {
		offer.VehicleClass = attrString(vehicle, "Code")
		if ac := attr(vehicle, "AirConditionInd"); ac != nil {
			offer.Extras["air_conditioning"] = ac
		}
		if tr := attrString(vehicle, "TransmissionType"); tr != "" {
			offer.Extras["transmission"] = tr
		}
		if makeModel := asMap(vehicle["VehMakeModel"]); makeModel != nil {
			offer.MakeModel = attrString(makeModel, "Name")
			vehicleName = offer.MakeModel
		}
		if vt := asMap(vehicle["VehType"]); vt != nil {
			if doors := attrString(vt, "DoorCount"); doors != "" {
				offer.Extras["door_count"] = doors
			}
			if baggage := attrString(vt, "Baggage"); baggage != "" {
				offer.Extras["baggage"] = baggage
			}
		}
		if offer.VehicleClass == "" {
			if vc := asMap(vehicle["VehClass"]); vc != nil {
				offer.VehicleClass = attrString(vc, "Size")
			}
		}
	}
	if vehicleName == "" {
		vehicleName = offer.VehicleClass
	}

	for _, rr := range AsList(avail["RentalRate"]) {
		rate := asMap(rr)
		if rate == nil {
			continue
		}
		for _, rq := range AsList(rate["RateQualifier"]) {
			if q := asMap(rq); q != nil {
				if plan := attrString(q, "RateQualifier"); plan != "" {
					offer.RatePlan = plan
				}
			}
		}
	}

	if total := asMap(avail["TotalCharge"]); total != nil {
		offer.TotalPrice = asFloat(attr(total, "RateTotalAmount"))
		if cur := attrString(total, "CurrencyCode"); cur != "" {
			offer.Currency = cur
		}
	}
	if offer.TotalPrice < 0 {
		return nil, fmt.Errorf("offer has negative total price %f", offer.TotalPrice)
	}

	if ref := asMap(avail["Reference"]); ref != nil {
		offer.SupplierOfferRef = attrString(ref, "ID")
	}
	if offer.SupplierOfferRef == "" {
		offer.SupplierOfferRef = SynthesizeOfferRef(agreementRef, sourceID, vehicleName, offer.TotalPrice, ordinal)
	}

	var equips []interface{}
	if pe := asMap(avail["PricedEquips"]); pe != nil {
		equips = append(equips, AsList(pe["PricedEquip"])...)
	}
	if len(equips) > 0 {
		offer.Extras["equipment"] = equips
	}
	if fees := asMap(avail["Fees"]); fees != nil {
		if list := AsList(fees["Fee"]); len(list) > 0 {
			offer.Extras["fees"] = list
		}
	}
	if ext := asMap(entry["TPA_Extensions"]); ext != nil {
		if inc := AsList(ext["Included"]); len(inc) > 0 {
			offer.Extras["terms_included"] = inc
		}
		if exc := AsList(ext["Excluded"]); len(exc) > 0 {
			offer.Extras["terms_excluded"] = exc
		}
	}

	return offer, nil
}

// NormalizeOTABooking converts an OTA vehicle reservation response into a
// BookingRecord. A missing confirmation id gets a synthetic one; the record
// still tracks the supplier's reservation status.
func NormalizeOTABooking(payload map[string]interface{}, sourceID, agreementRef, supplierOfferRef string) *models.BookingRecord {
	rec := &models.BookingRecord{
		Status:           models.BookingRequested,
		AgreementRef:     agreementRef,
		SupplierOfferRef: supplierOfferRef,
		SourceID:         sourceID,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	core := asMap(payload["VehResRSCore"])
	if core == nil {
		if wrapped := asMap(payload["OTA_VehResRS"]); wrapped != nil {
			core = asMap(wrapped["VehResRSCore"])
		}
	}
	if core != nil {
		for _, r := range AsList(core["VehReservation"]) {
			res := asMap(r)
			if res == nil {
				continue
			}
			if status := attrString(res, "ReservationStatus"); status != "" {
				rec.Status = mapReservationStatus(status)
			}
			if seg := asMap(res["VehSegmentCore"]); seg != nil {
				for _, c := range AsList(seg["ConfID"]) {
					if conf := asMap(c); conf != nil {
						if id := attrString(conf, "ID"); id != "" {
							rec.SupplierBookingRef = id
						}
					}
				}
			}
		}
	}
	if rec.SupplierBookingRef == "" {
		rec.SupplierBookingRef = "BKG-" + uuid.New().String()
	}
	return rec
}

func mapReservationStatus(s string) string {
	switch strings.ToLower(s) {
	case "confirmed", "reserved", "committed":
		return models.BookingConfirmed
	case "cancelled", "canceled":
		return models.BookingCancelled
	case "failed", "rejected":
		return models.BookingFailed
	default:
		return models.BookingRequested
	}
}
