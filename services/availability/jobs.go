package availability

import (
	"sync"
	"time"

	"carhire/models"
	"carhire/utils"

	"go.uber.org/zap"
)

// PollChunk is one page of results delivered to a poller. Cursor is the
// highest seq delivered, so the caller can resume with since_seq = Cursor.
type PollChunk struct {
	Items  []models.Offer `json:"items"`
	Status string         `json:"status"`
	Cursor int64          `json:"cursor"`
}

// JobTable holds in-flight availability jobs and their buffered results.
// Each job owns a single sequence allocator: every writer serializes through
// the job lock, so seq values are strictly increasing and never reused no
// matter which goroutine produced the offers.
type JobTable struct {
	mu   sync.RWMutex
	jobs map[string]*jobEntry

	ttl time.Duration
	now func() time.Time
}

type jobEntry struct {
	mu      sync.Mutex
	job     models.AvailabilityJob
	results []models.AvailabilityResult
	nextSeq int64
	// notify is closed and replaced whenever new results land or the job
	// completes; pollers wait on it instead of spinning.
	notify chan struct{}
}

// NewJobTable builds an empty table. ttl is how long a job and its buffered
// results are retained past the job deadline.
func NewJobTable(ttl time.Duration) *JobTable {
	return &JobTable{
		jobs: make(map[string]*jobEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new job.
func (jt *JobTable) Create(job models.AvailabilityJob) {
	jt.mu.Lock()
	defer jt.mu.Unlock()
	jt.jobs[job.ID] = &jobEntry{
		job:    job,
		notify: make(chan struct{}),
	}
}

// Get returns a snapshot of the job, if it is still retained.
func (jt *JobTable) Get(jobID string) (models.AvailabilityJob, bool) {
	jt.mu.RLock()
	e, ok := jt.jobs[jobID]
	jt.mu.RUnlock()
	if !ok {
		return models.AvailabilityJob{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job, true
}

// Append records one source's completed contribution: its normalized offers
// as one sequenced result, plus the response/timeout accounting that drives
// completion.
func (jt *JobTable) Append(jobID, sourceID string, offers []models.Offer, timedOut bool) {
	jt.mu.RLock()
	e, ok := jt.jobs[jobID]
	jt.mu.RUnlock()
	if !ok {
		// The job was reclaimed while the supplier call was in flight.
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSeq++
	e.results = append(e.results, models.AvailabilityResult{
		JobID:    jobID,
		Seq:      e.nextSeq,
		SourceID: sourceID,
		Offers:   offers,
	})

	if timedOut {
		e.job.TimedOutSources++
	} else {
		e.job.ResponsesReceived++
	}
	jt.refreshStatusLocked(e)
	jt.broadcastLocked(e)
}

// refreshStatusLocked applies the monotonic completion rule. Caller holds
// e.mu.
func (jt *JobTable) refreshStatusLocked(e *jobEntry) {
	if e.job.Status == models.JobComplete {
		return
	}
	done := e.job.ResponsesReceived+e.job.TimedOutSources >= e.job.ExpectedSources
	if done || jt.now().After(e.job.Deadline) {
		e.job.Status = models.JobComplete
	}
}

func (jt *JobTable) broadcastLocked(e *jobEntry) {
	close(e.notify)
	e.notify = make(chan struct{})
}

// Poll returns all results with seq > sinceSeq immediately if any exist,
// otherwise blocks up to wait for new results. Polling a job the table no
// longer holds yields a synthetic COMPLETE-empty chunk: the job may simply
// have been reclaimed after its deadline.
func (jt *JobTable) Poll(jobID string, sinceSeq int64, wait time.Duration) PollChunk {
	var timer *time.Timer

	for {
		jt.mu.RLock()
		e, ok := jt.jobs[jobID]
		jt.mu.RUnlock()
		if !ok {
			return PollChunk{Items: []models.Offer{}, Status: models.ChunkComplete, Cursor: sinceSeq}
		}

		e.mu.Lock()
		jt.refreshStatusLocked(e)

		var items []models.Offer
		cursor := sinceSeq
		for _, res := range e.results {
			if res.Seq > sinceSeq {
				items = append(items, res.Offers...)
				if res.Seq > cursor {
					cursor = res.Seq
				}
			}
		}
		status := models.ChunkPartial
		if e.job.Status == models.JobComplete {
			status = models.ChunkComplete
		}
		deadline := e.job.Deadline
		ch := e.notify
		e.mu.Unlock()

		if cursor > sinceSeq || status == models.ChunkComplete || wait <= 0 {
			if items == nil {
				items = []models.Offer{}
			}
			return PollChunk{Items: items, Status: status, Cursor: cursor}
		}

		if timer == nil {
			// Completion by deadline has no Append to broadcast it, so a
			// blocked poll must wake itself no later than the deadline.
			sleep := wait
			if until := deadline.Sub(jt.now()) + 10*time.Millisecond; until < sleep {
				sleep = until
			}
			if sleep < 0 {
				sleep = 0
			}
			timer = time.NewTimer(sleep)
			defer timer.Stop()
		}

		select {
		case <-ch:
			// New results or a status change; collect again.
		case <-timer.C:
			// Wait budget spent; one final collect picks up anything that
			// landed meanwhile and re-evaluates the deadline.
			wait = 0
		}
	}
}

// Expire drops one job and its buffered results.
func (jt *JobTable) Expire(jobID string) {
	jt.mu.Lock()
	defer jt.mu.Unlock()
	delete(jt.jobs, jobID)
}

// Sweep reclaims every job whose deadline lies more than the retention TTL in
// the past, and returns how many were dropped. In-flight supplier calls are
// unaffected; they run to their own timeout and find the job gone.
func (jt *JobTable) Sweep() int {
	cutoff := jt.now().Add(-jt.ttl)
	jt.mu.Lock()
	defer jt.mu.Unlock()

	dropped := 0
	for id, e := range jt.jobs {
		e.mu.Lock()
		expired := e.job.Deadline.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(jt.jobs, id)
			dropped++
		}
	}
	return dropped
}

// StartSweeper runs the reclaim loop until ctx is done.
func (jt *JobTable) StartSweeper(stop <-chan struct{}, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := jt.Sweep(); n > 0 {
					utils.GetLogger().Debug("reclaimed expired availability jobs", zap.Int("count", n))
				}
			}
		}
	}()
}
