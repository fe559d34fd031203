package handlers

import (
	"errors"
	"net/http"

	"carhire/models"
	"carhire/services/adapter"
	"carhire/services/booking"

	"github.com/gin-gonic/gin"
)

// writeBookingError maps orchestrator errors onto HTTP statuses.
func writeBookingError(c *gin.Context, err error) {
	var agrErr *booking.AgreementInvalidError
	var notFound *booking.NotFoundError
	var confErr *adapter.ConfigurationError
	var unavailable *adapter.AdapterUnavailableError
	var statusErr *adapter.AdapterStatusError

	switch {
	case errors.As(err, &agrErr):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &confErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &statusErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateBookingHandler places a booking. Retries carrying the same
// Idempotency-Key header replay the original outcome.
func CreateBookingHandler(svc booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.BookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		if input.AgreementRef == "" || input.SupplierOfferRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agreement_ref and supplier_offer_ref are required"})
			return
		}

		idemKey := c.GetHeader("Idempotency-Key")
		rec, err := svc.Create(c.Request.Context(), agentID(c), idemKey, input)
		if err != nil {
			writeBookingError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

// ModifyBookingHandler forwards a change to an existing booking. The body is
// the set of fields to change, passed to the supplier as-is.
func ModifyBookingHandler(svc booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		agreementRef := c.Query("agreement_ref")
		if agreementRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agreement_ref query parameter is required"})
			return
		}

		var changes map[string]interface{}
		if err := c.ShouldBindJSON(&changes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		rec, err := svc.Modify(c.Request.Context(), agentID(c), c.Param("bookingRef"), agreementRef, changes)
		if err != nil {
			writeBookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// CancelBookingHandler cancels an existing booking.
func CancelBookingHandler(svc booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		agreementRef := c.Query("agreement_ref")
		if agreementRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agreement_ref query parameter is required"})
			return
		}

		rec, err := svc.Cancel(c.Request.Context(), agentID(c), c.Param("bookingRef"), agreementRef)
		if err != nil {
			writeBookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// CheckBookingHandler fetches the supplier's current view of a booking.
func CheckBookingHandler(svc booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		agreementRef := c.Query("agreement_ref")
		if agreementRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agreement_ref query parameter is required"})
			return
		}

		rec, err := svc.Check(c.Request.Context(), agentID(c), c.Param("bookingRef"), agreementRef)
		if err != nil {
			writeBookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
