package healthRepo

import (
	"fmt"
	"sync"

	"carhire/models"
)

// MemoryHealthRepo is an in-memory repository used by tests and mock
// deployments.
type MemoryHealthRepo struct {
	mu    sync.RWMutex
	state map[string]models.SourceHealth
}

func NewMemoryHealthRepo() *MemoryHealthRepo {
	return &MemoryHealthRepo{state: make(map[string]models.SourceHealth)}
}

func (repo *MemoryHealthRepo) Upsert(sh *models.SourceHealth) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.state[sh.SourceID] = *sh
	return nil
}

func (repo *MemoryHealthRepo) GetBySourceID(sourceID string) (*models.SourceHealth, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	sh, ok := repo.state[sourceID]
	if !ok {
		return nil, fmt.Errorf("health for source %s not found", sourceID)
	}
	return &sh, nil
}
