package booking

import (
	"context"
	"time"

	agreementRepo "carhire/database/repository/agreement"
	bookingRepo "carhire/database/repository/booking"
	sourceRepo "carhire/database/repository/source"
	"carhire/models"
	"carhire/services/adapter"
	"carhire/utils"

	"go.uber.org/zap"
)

// Service is the booking orchestrator: every operation re-validates the
// agreement, resolves the owning source's adapter and forwards the call.
type Service interface {
	// Create places a booking with the supplier. A non-empty idempotencyKey
	// makes retries replay the original outcome instead of booking twice.
	Create(ctx context.Context, agentID, idempotencyKey string, input models.BookingInput) (*models.BookingRecord, error)
	// Modify forwards a change to an existing booking.
	Modify(ctx context.Context, agentID, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error)
	// Cancel cancels an existing booking.
	Cancel(ctx context.Context, agentID, supplierBookingRef, agreementRef string) (*models.BookingRecord, error)
	// Check fetches the supplier's current view of a booking.
	Check(ctx context.Context, agentID, supplierBookingRef, agreementRef string) (*models.BookingRecord, error)
}

// DefaultBookingService implements Service against the repositories and the
// adapter registry.
type DefaultBookingService struct {
	AgreementRepo agreementRepo.AgreementRepository
	SourceRepo    sourceRepo.SourceRepository
	BookingRepo   bookingRepo.BookingRepository
	Registry      adapter.Registry
	// Idem, when set, is the fast replay path; the booking repository is
	// always consulted as the durable backstop.
	Idem IdempotencyCache
}

// NewBookingService wires the orchestrator.
func NewBookingService(
	agreements agreementRepo.AgreementRepository,
	sources sourceRepo.SourceRepository,
	bookings bookingRepo.BookingRepository,
	registry adapter.Registry,
	idem IdempotencyCache,
) *DefaultBookingService {
	return &DefaultBookingService{
		AgreementRepo: agreements,
		SourceRepo:    sources,
		BookingRepo:   bookings,
		Registry:      registry,
		Idem:          idem,
	}
}

// resolve validates the agreement for the calling agent and returns the
// adapter for its source. Mutating operations require an ACTIVE agreement.
func (s *DefaultBookingService) resolve(agentID, agreementRef string, requireActive bool) (*models.Agreement, adapter.SupplierAdapter, error) {
	agr, err := s.AgreementRepo.GetByRef(agreementRef)
	if err != nil || agr == nil {
		return nil, nil, &AgreementInvalidError{AgreementRef: agreementRef, Reason: "unknown agreement"}
	}
	if agr.AgentID != agentID {
		return nil, nil, &AgreementInvalidError{AgreementRef: agreementRef, Reason: "agreement is not held by the calling agent"}
	}
	if requireActive && agr.Status != models.AgreementActive {
		return nil, nil, &AgreementInvalidError{AgreementRef: agreementRef, Reason: "agreement is " + agr.Status}
	}

	src, err := s.SourceRepo.GetByID(agr.SourceID)
	if err != nil || src == nil {
		return nil, nil, &AgreementInvalidError{AgreementRef: agreementRef, Reason: "agreement's source is not configured"}
	}
	supplier, err := s.Registry.Resolve(*src)
	if err != nil {
		return nil, nil, err
	}
	return agr, supplier, nil
}

func (s *DefaultBookingService) Create(ctx context.Context, agentID, idempotencyKey string, input models.BookingInput) (*models.BookingRecord, error) {
	logger := utils.GetLogger()

	if idempotencyKey != "" {
		if s.Idem != nil {
			if rec, ok := s.Idem.Get(ctx, agentID, idempotencyKey); ok {
				logger.Info("booking create replayed from idempotency cache",
					zap.String("agentID", agentID),
					zap.String("supplierBookingRef", rec.SupplierBookingRef))
				return rec, nil
			}
		}
		if rec, err := s.BookingRepo.GetByIdempotencyKey(agentID, idempotencyKey); err == nil && rec != nil {
			logger.Info("booking create replayed from repository",
				zap.String("agentID", agentID),
				zap.String("supplierBookingRef", rec.SupplierBookingRef))
			if s.Idem != nil {
				s.Idem.Put(ctx, agentID, idempotencyKey, rec)
			}
			return rec, nil
		}
	}

	agr, supplier, err := s.resolve(agentID, input.AgreementRef, true)
	if err != nil {
		return nil, err
	}

	rec, err := supplier.BookingCreate(ctx, input)
	if err != nil {
		logger.Error("supplier booking create failed",
			zap.String("agentID", agentID),
			zap.String("agreementRef", input.AgreementRef),
			zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	rec.AgentID = agentID
	rec.IdempotencyKey = idempotencyKey
	rec.AgreementRef = input.AgreementRef
	rec.SourceID = agr.SourceID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.BookingRepo.Create(rec); err != nil {
		// The supplier holds the booking regardless; surface the record and
		// log the persistence gap rather than fail the agent.
		logger.Error("failed to persist booking record",
			zap.String("supplierBookingRef", rec.SupplierBookingRef), zap.Error(err))
	} else if idempotencyKey != "" && s.Idem != nil {
		s.Idem.Put(ctx, agentID, idempotencyKey, rec)
	}

	logger.Info("booking created",
		zap.String("agentID", agentID),
		zap.String("agreementRef", input.AgreementRef),
		zap.String("supplierBookingRef", rec.SupplierBookingRef),
		zap.String("status", rec.Status))
	return rec, nil
}

// lookupStored finds the broker's record for a supplier booking ref. A ref the
// broker has never seen, or one held by a different agent, is not found.
func (s *DefaultBookingService) lookupStored(agentID, supplierBookingRef string) (*models.BookingRecord, error) {
	stored, err := s.BookingRepo.GetByRef(supplierBookingRef)
	if err != nil || stored == nil {
		return nil, &NotFoundError{SupplierBookingRef: supplierBookingRef}
	}
	if stored.AgentID != agentID {
		return nil, &NotFoundError{SupplierBookingRef: supplierBookingRef}
	}
	return stored, nil
}

func (s *DefaultBookingService) Modify(ctx context.Context, agentID, supplierBookingRef, agreementRef string, changes map[string]interface{}) (*models.BookingRecord, error) {
	_, supplier, err := s.resolve(agentID, agreementRef, true)
	if err != nil {
		return nil, err
	}
	stored, err := s.lookupStored(agentID, supplierBookingRef)
	if err != nil {
		return nil, err
	}
	rec, err := supplier.BookingModify(ctx, supplierBookingRef, agreementRef, changes)
	if err != nil {
		return nil, err
	}
	s.syncStored(stored, rec)
	utils.GetLogger().Info("booking modified",
		zap.String("agentID", agentID),
		zap.String("supplierBookingRef", supplierBookingRef),
		zap.String("status", rec.Status))
	return rec, nil
}

func (s *DefaultBookingService) Cancel(ctx context.Context, agentID, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	_, supplier, err := s.resolve(agentID, agreementRef, true)
	if err != nil {
		return nil, err
	}
	stored, err := s.lookupStored(agentID, supplierBookingRef)
	if err != nil {
		return nil, err
	}
	rec, err := supplier.BookingCancel(ctx, supplierBookingRef, agreementRef)
	if err != nil {
		return nil, err
	}
	s.syncStored(stored, rec)
	utils.GetLogger().Info("booking cancelled",
		zap.String("agentID", agentID),
		zap.String("supplierBookingRef", supplierBookingRef))
	return rec, nil
}

func (s *DefaultBookingService) Check(ctx context.Context, agentID, supplierBookingRef, agreementRef string) (*models.BookingRecord, error) {
	_, supplier, err := s.resolve(agentID, agreementRef, false)
	if err != nil {
		return nil, err
	}
	stored, err := s.lookupStored(agentID, supplierBookingRef)
	if err != nil {
		return nil, err
	}
	rec, err := supplier.BookingCheck(ctx, supplierBookingRef, agreementRef)
	if err != nil {
		return nil, err
	}
	s.syncStored(stored, rec)
	return rec, nil
}

// syncStored folds the supplier's latest view into the stored record and
// rewrites rec to the broker's canonical view.
func (s *DefaultBookingService) syncStored(stored, rec *models.BookingRecord) {
	stored.Status = rec.Status
	if rec.Detail != nil {
		stored.Detail = rec.Detail
	}
	stored.UpdatedAt = time.Now().UTC()
	if err := s.BookingRepo.Update(stored); err != nil {
		utils.GetLogger().Warn("failed to update stored booking record",
			zap.String("supplierBookingRef", rec.SupplierBookingRef), zap.Error(err))
	}
	*rec = *stored
}
