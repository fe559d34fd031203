package health

import (
	"sync"
	"time"

	healthRepo "carhire/database/repository/health"
	"carhire/models"
	"carhire/utils"

	"go.uber.org/zap"
)

// DefaultTracker keeps live circuit-breaker state per source. Accounting for
// one source never blocks activity on another: the shared map is only locked
// to find or create an entry, and each entry has its own mutex.
type DefaultTracker struct {
	Policy Policy
	// Repo, when set, receives best-effort snapshots so health survives
	// restarts and is visible to the admin surface.
	Repo healthRepo.HealthRepository

	mu      sync.RWMutex
	sources map[string]*sourceState

	now func() time.Time
}

type sourceState struct {
	mu            sync.Mutex
	window        []bool // rolling slow samples, oldest first
	slowCount     int
	backoffLevel  int
	excludedUntil time.Time
	strikeCount   int
	lastStrikeAt  time.Time
	updatedAt     time.Time
	resetBy       string
	resetAt       time.Time
}

// NewTracker builds a tracker with the given escalation policy.
func NewTracker(policy Policy, repo healthRepo.HealthRepository) *DefaultTracker {
	return &DefaultTracker{
		Policy:  policy,
		Repo:    repo,
		sources: make(map[string]*sourceState),
		now:     time.Now,
	}
}

func (t *DefaultTracker) state(sourceID string) *sourceState {
	t.mu.RLock()
	st, ok := t.sources[sourceID]
	t.mu.RUnlock()
	if ok {
		return st
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok = t.sources[sourceID]; ok {
		return st
	}
	st = &sourceState{}
	t.sources[sourceID] = st
	return st
}

// Allow reports whether the source may be called right now.
func (t *DefaultTracker) Allow(sourceID string) bool {
	st := t.state(sourceID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return !t.now().Before(st.excludedUntil)
}

// Record accounts one completed adapter call.
func (t *DefaultTracker) Record(sourceID string, latency time.Duration, callErr error) {
	st := t.state(sourceID)
	st.mu.Lock()
	now := t.now()
	st.updatedAt = now

	if callErr != nil {
		// Hard failures escalate through a separate strike counter:
		// consistently erroring is a different problem from occasionally
		// slow.
		st.strikeCount++
		st.lastStrikeAt = now
		if st.strikeCount >= t.Policy.StrikeLimit {
			t.escalate(sourceID, st, now, "strike threshold")
			st.strikeCount = 0
		}
		t.persist(sourceID, st)
		st.mu.Unlock()
		return
	}

	// Any success breaks the failure streak. A fast one also decays the
	// slow-rate as the window rolls.
	st.strikeCount = 0
	slow := latency > t.Policy.SlowCallThreshold
	st.window = append(st.window, slow)
	if slow {
		st.slowCount++
	}
	if len(st.window) > t.Policy.WindowSize {
		if st.window[0] {
			st.slowCount--
		}
		st.window = st.window[1:]
	}

	if len(st.window) >= t.Policy.WindowSize && t.Policy.WindowSize > 0 {
		rate := float64(st.slowCount) / float64(len(st.window))
		if rate >= t.Policy.SlowRateTrip {
			t.escalate(sourceID, st, now, "slow-rate threshold")
			// Start a fresh window so each further escalation reflects a
			// full window of new samples.
			st.window = st.window[:0]
			st.slowCount = 0
		}
	}
	t.persist(sourceID, st)
	st.mu.Unlock()
}

// escalate bumps the backoff level and extends the exclusion window
// exponentially, capped. Caller holds st.mu.
func (t *DefaultTracker) escalate(sourceID string, st *sourceState, now time.Time, reason string) {
	before := st.backoffLevel
	st.backoffLevel++

	backoff := t.Policy.BackoffBase << (st.backoffLevel - 1)
	if backoff > t.Policy.BackoffCap || backoff <= 0 {
		backoff = t.Policy.BackoffCap
	}
	until := now.Add(backoff)
	if until.After(st.excludedUntil) {
		st.excludedUntil = until
	}

	utils.GetLogger().Warn("source health escalation",
		zap.String("sourceID", sourceID),
		zap.String("reason", reason),
		zap.Int("backoffLevelBefore", before),
		zap.Int("backoffLevelAfter", st.backoffLevel),
		zap.Time("excludedUntil", st.excludedUntil),
	)
}

// Snapshot returns the current health state for a source.
func (t *DefaultTracker) Snapshot(sourceID string) models.SourceHealth {
	st := t.state(sourceID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return t.snapshotLocked(sourceID, st)
}

func (t *DefaultTracker) snapshotLocked(sourceID string, st *sourceState) models.SourceHealth {
	sh := models.SourceHealth{
		SourceID:      sourceID,
		SlowCount:     st.slowCount,
		SampleCount:   len(st.window),
		BackoffLevel:  st.backoffLevel,
		ExcludedUntil: st.excludedUntil,
		StrikeCount:   st.strikeCount,
		LastStrikeAt:  st.lastStrikeAt,
		UpdatedAt:     st.updatedAt,
		ResetBy:       st.resetBy,
		ResetAt:       st.resetAt,
	}
	if len(st.window) > 0 {
		sh.SlowRate = float64(st.slowCount) / float64(len(st.window))
	}
	return sh
}

// Reset clears backoff level, counters and the exclusion window immediately,
// recording who asked and when.
func (t *DefaultTracker) Reset(sourceID, actor string) {
	st := t.state(sourceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	before := st.backoffLevel
	st.window = nil
	st.slowCount = 0
	st.backoffLevel = 0
	st.excludedUntil = time.Time{}
	st.strikeCount = 0
	st.resetBy = actor
	st.resetAt = t.now()
	st.updatedAt = st.resetAt

	utils.GetLogger().Info("source health reset",
		zap.String("sourceID", sourceID),
		zap.String("actor", actor),
		zap.Int("backoffLevelBefore", before),
	)
	t.persist(sourceID, st)
}

// persist writes a best-effort snapshot. Caller holds st.mu.
func (t *DefaultTracker) persist(sourceID string, st *sourceState) {
	if t.Repo == nil {
		return
	}
	sh := t.snapshotLocked(sourceID, st)
	if err := t.Repo.Upsert(&sh); err != nil {
		utils.GetLogger().Warn("failed to persist source health snapshot",
			zap.String("sourceID", sourceID), zap.Error(err))
	}
}
