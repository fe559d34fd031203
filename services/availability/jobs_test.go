package availability

import (
	"testing"
	"time"

	"carhire/models"

	"github.com/stretchr/testify/require"
)

func newTestJob(id string, expected int, deadline time.Time) models.AvailabilityJob {
	return models.AvailabilityJob{
		ID:              id,
		AgentID:         "agent-1",
		ExpectedSources: expected,
		Status:          models.JobRunning,
		CreatedAt:       deadline.Add(-30 * time.Second),
		Deadline:        deadline,
	}
}

func newTestTable(ttl time.Duration) (*JobTable, *time.Time) {
	jt := NewJobTable(ttl)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	jt.now = func() time.Time { return now }
	return jt, &now
}

func offersFor(source string, n int) []models.Offer {
	offers := make([]models.Offer, 0, n)
	for i := 0; i < n; i++ {
		offers = append(offers, models.Offer{SourceID: source, SupplierOfferRef: source + "-offer"})
	}
	return offers
}

func TestAppendAssignsStrictlyIncreasingSeq(t *testing.T) {
	jt, now := newTestTable(2 * time.Minute)
	jt.Create(newTestJob("job-1", 3, now.Add(30*time.Second)))

	jt.Append("job-1", "src-a", offersFor("src-a", 2), false)
	jt.Append("job-1", "src-b", offersFor("src-b", 1), false)

	chunk := jt.Poll("job-1", 0, 0)
	require.Equal(t, int64(2), chunk.Cursor)
	require.Len(t, chunk.Items, 3)
	require.Equal(t, models.ChunkPartial, chunk.Status)

	// Resuming from the cursor yields only what arrived after it.
	jt.Append("job-1", "src-c", offersFor("src-c", 1), false)
	chunk = jt.Poll("job-1", 2, 0)
	require.Equal(t, int64(3), chunk.Cursor)
	require.Len(t, chunk.Items, 1)
	require.Equal(t, "src-c-offer", chunk.Items[0].SupplierOfferRef)
	require.Equal(t, models.ChunkComplete, chunk.Status)
}

func TestCompletionByAccounting(t *testing.T) {
	jt, now := newTestTable(2 * time.Minute)
	jt.Create(newTestJob("job-1", 2, now.Add(30*time.Second)))

	jt.Append("job-1", "src-a", offersFor("src-a", 1), false)
	require.Equal(t, models.ChunkPartial, jt.Poll("job-1", 0, 0).Status)

	// A timed-out source counts toward completion too.
	jt.Append("job-1", "src-b", nil, true)
	chunk := jt.Poll("job-1", 0, 0)
	require.Equal(t, models.ChunkComplete, chunk.Status)

	job, ok := jt.Get("job-1")
	require.True(t, ok)
	require.Equal(t, 1, job.ResponsesReceived)
	require.Equal(t, 1, job.TimedOutSources)
}

func TestCompletionByDeadlineIsMonotonic(t *testing.T) {
	jt, now := newTestTable(2 * time.Minute)
	jt.Create(newTestJob("job-1", 3, now.Add(30*time.Second)))

	*now = now.Add(31 * time.Second)
	require.Equal(t, models.ChunkComplete, jt.Poll("job-1", 0, 0).Status)

	// A straggler landing after the deadline never reopens the job.
	jt.Append("job-1", "src-late", offersFor("src-late", 1), false)
	chunk := jt.Poll("job-1", 0, 0)
	require.Equal(t, models.ChunkComplete, chunk.Status)
	require.Len(t, chunk.Items, 1)
}

func TestPollUnknownJobIsCompleteEmpty(t *testing.T) {
	jt, _ := newTestTable(2 * time.Minute)
	chunk := jt.Poll("no-such-job", 5, 0)
	require.Equal(t, models.ChunkComplete, chunk.Status)
	require.Empty(t, chunk.Items)
	require.Equal(t, int64(5), chunk.Cursor)
}

func TestLongPollWakesOnAppend(t *testing.T) {
	jt := NewJobTable(2 * time.Minute)
	jt.Create(newTestJob("job-1", 1, time.Now().Add(30*time.Second)))

	done := make(chan PollChunk, 1)
	go func() {
		done <- jt.Poll("job-1", 0, 5*time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	jt.Append("job-1", "src-a", offersFor("src-a", 1), false)

	select {
	case chunk := <-done:
		require.Len(t, chunk.Items, 1)
		require.Equal(t, models.ChunkComplete, chunk.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not wake on new results")
	}
}

func TestLongPollTimesOutPartial(t *testing.T) {
	jt := NewJobTable(2 * time.Minute)
	jt.Create(newTestJob("job-1", 1, time.Now().Add(30*time.Second)))

	start := time.Now()
	chunk := jt.Poll("job-1", 0, 50*time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Empty(t, chunk.Items)
	require.Equal(t, models.ChunkPartial, chunk.Status)
}

func TestBlockedPollCompletesAtDeadline(t *testing.T) {
	jt := NewJobTable(time.Minute)
	jt.Create(newTestJob("job-1", 2, time.Now().Add(60*time.Millisecond)))
	jt.Append("job-1", "src-a", offersFor("src-a", 1), false)

	// One of two sources has responded and the caller already consumed it;
	// the second never will. The poll must surface COMPLETE once the deadline
	// passes instead of sitting out its whole wait budget.
	start := time.Now()
	chunk := jt.Poll("job-1", 1, 5*time.Second)
	require.Equal(t, models.ChunkComplete, chunk.Status)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Empty(t, chunk.Items)
	require.Equal(t, int64(1), chunk.Cursor)
}

func TestSweepReclaimsOnlyPastRetention(t *testing.T) {
	jt, now := newTestTable(time.Minute)
	jt.Create(newTestJob("old", 1, now.Add(-2*time.Minute)))
	jt.Create(newTestJob("fresh", 1, now.Add(30*time.Second)))

	require.Equal(t, 1, jt.Sweep())

	_, ok := jt.Get("old")
	require.False(t, ok)
	_, ok = jt.Get("fresh")
	require.True(t, ok)
}

func TestExpireDropsJobAndLateAppendIsIgnored(t *testing.T) {
	jt, now := newTestTable(time.Minute)
	jt.Create(newTestJob("job-1", 1, now.Add(30*time.Second)))

	jt.Expire("job-1")
	jt.Append("job-1", "src-a", offersFor("src-a", 1), false)

	chunk := jt.Poll("job-1", 0, 0)
	require.Equal(t, models.ChunkComplete, chunk.Status)
	require.Empty(t, chunk.Items)
}
