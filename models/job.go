package models

import "time"

// Availability job states. Completion is monotonic: a COMPLETE job never
// reverts to RUNNING.
const (
	JobRunning  = "RUNNING"
	JobComplete = "COMPLETE"
)

// Poll chunk states returned to agents.
const (
	ChunkPartial  = "PARTIAL"
	ChunkComplete = "COMPLETE"
)

// AvailabilityJob is one submitted search being fanned out to suppliers.
type AvailabilityJob struct {
	ID                string               `json:"request_id" bson:"id"`
	AgentID           string               `json:"agent_id" bson:"agentId"`
	Criteria          AvailabilityCriteria `json:"criteria" bson:"criteria"`
	ExpectedSources   int                  `json:"expected_sources" bson:"expectedSources"`
	ResponsesReceived int                  `json:"responses_received" bson:"responsesReceived"`
	TimedOutSources   int                  `json:"timed_out_sources" bson:"timedOutSources"`
	Status            string               `json:"status" bson:"status"`
	CreatedAt         time.Time            `json:"created_at" bson:"createdAt"`
	Deadline          time.Time            `json:"deadline" bson:"deadline"`
}

// AvailabilityResult is one normalized offer batch attributed to a job. Seq is
// job-scoped and strictly increasing: a poller resuming from since_seq = N sees
// exactly the results with Seq > N, in order.
type AvailabilityResult struct {
	JobID    string  `json:"request_id" bson:"jobId"`
	Seq      int64   `json:"seq" bson:"seq"`
	SourceID string  `json:"source_id" bson:"sourceId"`
	Offers   []Offer `json:"offers" bson:"offers"`
}
