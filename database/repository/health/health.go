package healthRepo

import "carhire/models"

// HealthRepository persists per-source circuit-breaker snapshots. The tracker
// owns the live state; persistence is best-effort and exists so that health
// history survives restarts and is visible to the admin surface.
type HealthRepository interface {
	// Upsert stores the snapshot for its source id.
	Upsert(sh *models.SourceHealth) error
	// GetBySourceID retrieves the stored snapshot for a source.
	GetBySourceID(sourceID string) (*models.SourceHealth, error)
}
