package handlers

import (
	"net/http"
	"strconv"
	"time"

	"carhire/models"
	"carhire/services/availability"

	"github.com/gin-gonic/gin"
)

// availabilitySearchInput is the wire form of one search.
type availabilitySearchInput struct {
	PickupUnlocode   string    `json:"pickup_unlocode"`
	DropoffUnlocode  string    `json:"dropoff_unlocode"`
	PickupISO        time.Time `json:"pickup_iso"`
	DropoffISO       time.Time `json:"dropoff_iso"`
	DriverAge        int       `json:"driver_age"`
	ResidencyCountry string    `json:"residency_country"`
	VehicleClasses   []string  `json:"vehicle_classes"`
	Currency         string    `json:"currency"`
	AgreementRefs    []string  `json:"agreement_refs"`
}

// SubmitAvailabilityHandler accepts a search, fans it out and returns the
// request id to poll.
func SubmitAvailabilityHandler(svc availability.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input availabilitySearchInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		criteria, err := models.NewAvailabilityCriteria(
			input.PickupUnlocode, input.DropoffUnlocode,
			input.PickupISO, input.DropoffISO,
			input.DriverAge, input.Currency, input.AgreementRefs,
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		criteria.WithResidencyCountry(input.ResidencyCountry).WithVehicleClasses(input.VehicleClasses)

		res, err := svc.Submit(c.Request.Context(), agentID(c), *criteria)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit search", "details": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"request_id":          res.RequestID,
			"expected_sources":    res.ExpectedSources,
			"recommended_poll_ms": res.RecommendedPollMS,
		})
	}
}

// PollAvailabilityHandler delivers the next page of results for a request.
// since_seq resumes from the cursor of the previous page; wait_ms long-polls
// when nothing new is buffered yet.
func PollAvailabilityHandler(svc availability.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Query("request_id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request_id query parameter is required"})
			return
		}

		sinceSeq, err := strconv.ParseInt(c.DefaultQuery("since_seq", "0"), 10, 64)
		if err != nil || sinceSeq < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since_seq must be a non-negative integer"})
			return
		}
		waitMS, err := strconv.Atoi(c.DefaultQuery("wait_ms", "0"))
		if err != nil || waitMS < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wait_ms must be a non-negative integer"})
			return
		}

		chunk, err := svc.Poll(c.Request.Context(), requestID, sinceSeq, time.Duration(waitMS)*time.Millisecond)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to poll search", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, chunk)
	}
}
