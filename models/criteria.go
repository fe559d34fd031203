package models

import (
	"fmt"
	"strings"
	"time"
)

// AvailabilityCriteria is one agent search, normalized at construction and
// treated as immutable afterwards.
type AvailabilityCriteria struct {
	PickupLocode     string    `json:"pickup_unlocode" bson:"pickupUnlocode"`
	DropoffLocode    string    `json:"dropoff_unlocode" bson:"dropoffUnlocode"`
	PickupAt         time.Time `json:"pickup_iso" bson:"pickupAt"`
	DropoffAt        time.Time `json:"dropoff_iso" bson:"dropoffAt"`
	DriverAge        int       `json:"driver_age" bson:"driverAge"`
	ResidencyCountry string    `json:"residency_country" bson:"residencyCountry"`
	VehicleClasses   []string  `json:"vehicle_classes" bson:"vehicleClasses"`
	Currency         string    `json:"currency" bson:"currency"`
	AgreementRefs    []string  `json:"agreement_refs" bson:"agreementRefs"`
}

// NewAvailabilityCriteria validates and normalizes a search request.
// Locodes and currency are uppercased; residency defaults to "US".
func NewAvailabilityCriteria(
	pickupLocode, dropoffLocode string,
	pickupAt, dropoffAt time.Time,
	driverAge int,
	currency string,
	agreementRefs []string,
) (*AvailabilityCriteria, error) {
	if strings.TrimSpace(pickupLocode) == "" {
		return nil, fmt.Errorf("pickup_unlocode is required")
	}
	if strings.TrimSpace(dropoffLocode) == "" {
		return nil, fmt.Errorf("dropoff_unlocode is required")
	}
	if pickupAt.IsZero() {
		return nil, fmt.Errorf("pickup_iso must be a valid timestamp")
	}
	if dropoffAt.IsZero() {
		return nil, fmt.Errorf("dropoff_iso must be a valid timestamp")
	}
	if !dropoffAt.After(pickupAt) {
		return nil, fmt.Errorf("dropoff_iso must be after pickup_iso")
	}
	if driverAge < 18 || driverAge > 100 {
		return nil, fmt.Errorf("driver_age must be between 18 and 100")
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("currency is required")
	}
	if len(agreementRefs) == 0 {
		return nil, fmt.Errorf("agreement_refs must be a non-empty array")
	}

	return &AvailabilityCriteria{
		PickupLocode:     strings.ToUpper(strings.TrimSpace(pickupLocode)),
		DropoffLocode:    strings.ToUpper(strings.TrimSpace(dropoffLocode)),
		PickupAt:         pickupAt,
		DropoffAt:        dropoffAt,
		DriverAge:        driverAge,
		ResidencyCountry: "US",
		VehicleClasses:   []string{},
		Currency:         strings.ToUpper(strings.TrimSpace(currency)),
		AgreementRefs:    agreementRefs,
	}, nil
}

// WithResidencyCountry sets the driver residency (ISO-3166 alpha-2).
func (ac *AvailabilityCriteria) WithResidencyCountry(country string) *AvailabilityCriteria {
	if c := strings.ToUpper(strings.TrimSpace(country)); c != "" {
		ac.ResidencyCountry = c
	}
	return ac
}

// WithVehicleClasses restricts the search to the given vehicle classes.
// An empty list means "any".
func (ac *AvailabilityCriteria) WithVehicleClasses(classes []string) *AvailabilityCriteria {
	ac.VehicleClasses = classes
	return ac
}

// RentalDays returns the rental duration rounded up to whole days.
func (ac *AvailabilityCriteria) RentalDays() int {
	d := ac.DropoffAt.Sub(ac.PickupAt)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
