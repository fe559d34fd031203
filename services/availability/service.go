package availability

import (
	"context"
	"errors"
	"time"

	agreementRepo "carhire/database/repository/agreement"
	sourceRepo "carhire/database/repository/source"
	"carhire/models"
	"carhire/services/adapter"
	"carhire/services/health"
	"carhire/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxPollWait caps a single long-poll regardless of what the agent asks for.
const maxPollWait = 25 * time.Second

// DefaultAvailabilityService fans one search out across every eligible
// supplier in parallel and buffers the normalized offers for polling.
type DefaultAvailabilityService struct {
	AgreementRepo agreementRepo.AgreementRepository
	SourceRepo    sourceRepo.SourceRepository
	Registry      adapter.Registry
	Health        health.Tracker
	Jobs          *JobTable

	// CallTimeout bounds each individual supplier call; JobDeadline bounds
	// the job as a whole.
	CallTimeout       time.Duration
	JobDeadline       time.Duration
	RecommendedPollMS int

	// Expiry, when set, schedules deferred job reclaim through the task
	// queue. The job table's own sweeper covers the queue being down.
	Expiry ExpiryScheduler
}

// NewAvailabilityService wires the fan-out engine.
func NewAvailabilityService(
	agreements agreementRepo.AgreementRepository,
	sources sourceRepo.SourceRepository,
	registry adapter.Registry,
	tracker health.Tracker,
	jobs *JobTable,
	callTimeout, jobDeadline time.Duration,
	recommendedPollMS int,
) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{
		AgreementRepo:     agreements,
		SourceRepo:        sources,
		Registry:          registry,
		Health:            tracker,
		Jobs:              jobs,
		CallTimeout:       callTimeout,
		JobDeadline:       jobDeadline,
		RecommendedPollMS: recommendedPollMS,
	}
}

type dispatch struct {
	agreementRef string
	source       models.Source
	supplier     adapter.SupplierAdapter
}

// Submit resolves the agent's agreement refs down to the callable set and
// dispatches one goroutine per pair. Invalid refs never fail the whole
// search; they are skipped and logged, and a search that resolves to zero
// callable sources still succeeds with an immediately-complete empty job.
func (s *DefaultAvailabilityService) Submit(ctx context.Context, agentID string, criteria models.AvailabilityCriteria) (*SubmitResult, error) {
	logger := utils.GetLogger()
	dispatches := make([]dispatch, 0, len(criteria.AgreementRefs))

	for _, ref := range criteria.AgreementRefs {
		agr, err := s.AgreementRepo.GetByRef(ref)
		if err != nil || agr == nil {
			logger.Warn("skipping unknown agreement ref",
				zap.String("agreementRef", ref), zap.Error(err))
			continue
		}
		if agr.AgentID != agentID {
			logger.Warn("skipping agreement not owned by agent",
				zap.String("agreementRef", ref), zap.String("agentID", agentID))
			continue
		}
		if agr.Status != models.AgreementActive {
			logger.Info("skipping inactive agreement",
				zap.String("agreementRef", ref), zap.String("status", agr.Status))
			continue
		}
		if !agr.CoversLocode(criteria.PickupLocode) {
			logger.Info("skipping agreement outside pickup coverage",
				zap.String("agreementRef", ref), zap.String("pickup", criteria.PickupLocode))
			continue
		}

		src, err := s.SourceRepo.GetByID(agr.SourceID)
		if err != nil || src == nil {
			logger.Warn("skipping agreement with unresolvable source",
				zap.String("agreementRef", ref), zap.String("sourceID", agr.SourceID), zap.Error(err))
			continue
		}
		if !s.Health.Allow(src.ID) {
			logger.Info("skipping excluded source",
				zap.String("agreementRef", ref), zap.String("sourceID", src.ID))
			continue
		}

		supplier, err := s.Registry.Resolve(*src)
		if err != nil {
			// Misconfiguration is terminal for this source but never for the
			// search; the pair simply contributes nothing.
			logger.Error("skipping misconfigured source",
				zap.String("agreementRef", ref), zap.String("sourceID", src.ID), zap.Error(err))
			continue
		}
		dispatches = append(dispatches, dispatch{agreementRef: ref, source: *src, supplier: supplier})
	}

	now := time.Now().UTC()
	job := models.AvailabilityJob{
		ID:              uuid.NewString(),
		AgentID:         agentID,
		Criteria:        criteria,
		ExpectedSources: len(dispatches),
		Status:          models.JobRunning,
		CreatedAt:       now,
		Deadline:        now.Add(s.JobDeadline),
	}
	if job.ExpectedSources == 0 {
		job.Status = models.JobComplete
	}
	s.Jobs.Create(job)
	s.scheduleExpiry(job)

	for _, d := range dispatches {
		go s.callSource(job.ID, criteria, d)
	}

	logger.Info("availability search submitted",
		zap.String("requestID", job.ID),
		zap.String("agentID", agentID),
		zap.Int("expectedSources", job.ExpectedSources),
	)
	return &SubmitResult{
		RequestID:         job.ID,
		ExpectedSources:   job.ExpectedSources,
		RecommendedPollMS: s.RecommendedPollMS,
	}, nil
}

// callSource runs one supplier call to completion under its own timeout,
// detached from the submit request's context.
func (s *DefaultAvailabilityService) callSource(jobID string, criteria models.AvailabilityCriteria, d dispatch) {
	callCtx, cancel := context.WithTimeout(context.Background(), s.CallTimeout)
	defer cancel()

	start := time.Now()
	offers, err := d.supplier.Availability(callCtx, criteria, d.agreementRef)
	latency := time.Since(start)
	s.Health.Record(d.source.ID, latency, err)

	if err != nil {
		var unavailable *adapter.AdapterUnavailableError
		timedOut := errors.As(err, &unavailable) || callCtx.Err() != nil
		utils.GetLogger().Warn("supplier availability call failed",
			zap.String("requestID", jobID),
			zap.String("sourceID", d.source.ID),
			zap.String("agreementRef", d.agreementRef),
			zap.Duration("latency", latency),
			zap.Bool("timedOut", timedOut),
			zap.Error(err),
		)
		s.Jobs.Append(jobID, d.source.ID, nil, timedOut)
		return
	}

	utils.GetLogger().Debug("supplier availability call completed",
		zap.String("requestID", jobID),
		zap.String("sourceID", d.source.ID),
		zap.Int("offers", len(offers)),
		zap.Duration("latency", latency),
	)
	s.Jobs.Append(jobID, d.source.ID, offers, false)
}

func (s *DefaultAvailabilityService) scheduleExpiry(job models.AvailabilityJob) {
	if s.Expiry == nil {
		return
	}
	at := job.Deadline.Add(s.Jobs.ttl)
	if err := s.Expiry.ScheduleExpiry(job.ID, at); err != nil {
		// The sweeper reclaims the job eventually either way.
		utils.GetLogger().Warn("failed to schedule job expiry task",
			zap.String("requestID", job.ID), zap.Error(err))
	}
}

// Poll delivers the next page of results for a job.
func (s *DefaultAvailabilityService) Poll(ctx context.Context, requestID string, sinceSeq int64, wait time.Duration) (*PollChunk, error) {
	if wait < 0 {
		wait = 0
	}
	if wait > maxPollWait {
		wait = maxPollWait
	}
	chunk := s.Jobs.Poll(requestID, sinceSeq, wait)
	return &chunk, nil
}
