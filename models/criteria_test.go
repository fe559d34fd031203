package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAvailabilityCriteriaNormalizes(t *testing.T) {
	pickup := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	c, err := NewAvailabilityCriteria("gbman", " gbgla ", pickup, pickup.Add(48*time.Hour), 30, "gbp", []string{"AGR-1"})
	require.NoError(t, err)

	require.Equal(t, "GBMAN", c.PickupLocode)
	require.Equal(t, "GBGLA", c.DropoffLocode)
	require.Equal(t, "GBP", c.Currency)
	require.Equal(t, "US", c.ResidencyCountry)
	require.Empty(t, c.VehicleClasses)

	c.WithResidencyCountry("gb").WithVehicleClasses([]string{"ECMN"})
	require.Equal(t, "GB", c.ResidencyCountry)
	require.Equal(t, []string{"ECMN"}, c.VehicleClasses)
}

func TestNewAvailabilityCriteriaValidation(t *testing.T) {
	pickup := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	dropoff := pickup.Add(48 * time.Hour)

	cases := []struct {
		name    string
		mutate  func() error
		message string
	}{
		{"missing pickup locode", func() error {
			_, err := NewAvailabilityCriteria("", "GBGLA", pickup, dropoff, 30, "GBP", []string{"A"})
			return err
		}, "pickup_unlocode"},
		{"dropoff before pickup", func() error {
			_, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, pickup.Add(-time.Hour), 30, "GBP", []string{"A"})
			return err
		}, "dropoff_iso"},
		{"driver too young", func() error {
			_, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, dropoff, 17, "GBP", []string{"A"})
			return err
		}, "driver_age"},
		{"driver age absurd", func() error {
			_, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, dropoff, 101, "GBP", []string{"A"})
			return err
		}, "driver_age"},
		{"no agreements", func() error {
			_, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, dropoff, 30, "GBP", nil)
			return err
		}, "agreement_refs"},
		{"no currency", func() error {
			_, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, dropoff, 30, "", []string{"A"})
			return err
		}, "currency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mutate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestRentalDaysRoundsUp(t *testing.T) {
	pickup := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	c, err := NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, pickup.Add(48*time.Hour), 30, "GBP", []string{"A"})
	require.NoError(t, err)
	require.Equal(t, 2, c.RentalDays())

	c, err = NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, pickup.Add(49*time.Hour), 30, "GBP", []string{"A"})
	require.NoError(t, err)
	require.Equal(t, 3, c.RentalDays())

	c, err = NewAvailabilityCriteria("GBMAN", "GBGLA", pickup, pickup.Add(time.Hour), 30, "GBP", []string{"A"})
	require.NoError(t, err)
	require.Equal(t, 1, c.RentalDays())
}

func TestAgreementCoversLocode(t *testing.T) {
	a := Agreement{Ref: "AGR-1"}
	require.True(t, a.CoversLocode("GBMAN"))

	a.Locodes = []string{"GBMAN", "GBGLA"}
	require.True(t, a.CoversLocode("GBMAN"))
	require.False(t, a.CoversLocode("FRPAR"))
}
