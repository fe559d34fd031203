package availability

import (
	"context"
	"time"

	"carhire/models"
)

// SubmitResult is the immediate acknowledgement of a search. The offers
// themselves arrive through Poll.
type SubmitResult struct {
	RequestID         string `json:"request_id"`
	ExpectedSources   int    `json:"expected_sources"`
	RecommendedPollMS int    `json:"recommended_poll_ms"`
}

// Service is the availability fan-out engine: submit a search, poll its
// incrementally arriving offers.
type Service interface {
	// Submit validates the agent's agreements, dispatches one supplier call
	// per eligible (agreement, source) pair and returns immediately.
	Submit(ctx context.Context, agentID string, criteria models.AvailabilityCriteria) (*SubmitResult, error)
	// Poll returns the results with seq > sinceSeq, long-polling up to wait
	// when none are buffered yet.
	Poll(ctx context.Context, requestID string, sinceSeq int64, wait time.Duration) (*PollChunk, error)
}

// ExpiryScheduler schedules the deferred reclaim of a job at its retention
// deadline. The ticker sweep in JobTable backstops a scheduler outage.
type ExpiryScheduler interface {
	ScheduleExpiry(jobID string, at time.Time) error
}
