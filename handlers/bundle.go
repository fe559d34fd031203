package handlers

import (
	agreementRepoPkg "carhire/database/repository/agreement"
	sourceRepoPkg "carhire/database/repository/source"
	"carhire/services/availability"
	"carhire/services/booking"
	"carhire/services/health"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	AgreementRepo agreementRepoPkg.AgreementRepository
	SourceRepo    sourceRepoPkg.SourceRepository

	// Availability endpoints
	SubmitAvailabilityHandler gin.HandlerFunc
	PollAvailabilityHandler   gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler gin.HandlerFunc
	ModifyBookingHandler gin.HandlerFunc
	CancelBookingHandler gin.HandlerFunc
	CheckBookingHandler  gin.HandlerFunc

	// Agreement endpoints
	ListAgreementsHandler gin.HandlerFunc

	// Admin endpoints
	ListSourceHealthHandler  gin.HandlerFunc
	GetSourceHealthHandler   gin.HandlerFunc
	ResetSourceHealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires every handler against the given services.
func NewHandlerBundle(
	availSvc availability.Service,
	bookingSvc booking.Service,
	tracker health.Tracker,
	agreements agreementRepoPkg.AgreementRepository,
	sources sourceRepoPkg.SourceRepository,
) *HandlerBundle {
	return &HandlerBundle{
		AgreementRepo: agreements,
		SourceRepo:    sources,

		SubmitAvailabilityHandler: SubmitAvailabilityHandler(availSvc),
		PollAvailabilityHandler:   PollAvailabilityHandler(availSvc),

		CreateBookingHandler: CreateBookingHandler(bookingSvc),
		ModifyBookingHandler: ModifyBookingHandler(bookingSvc),
		CancelBookingHandler: CancelBookingHandler(bookingSvc),
		CheckBookingHandler:  CheckBookingHandler(bookingSvc),

		ListAgreementsHandler: ListAgreementsHandler(agreements),

		ListSourceHealthHandler:  ListSourceHealthHandler(tracker, sources),
		GetSourceHealthHandler:   GetSourceHealthHandler(tracker),
		ResetSourceHealthHandler: ResetSourceHealthHandler(tracker),
	}
}

// agentID pulls the authenticated agent id set by the auth middleware.
func agentID(c *gin.Context) string {
	return c.GetString("agentID")
}
