package sourceRepo

import (
	"fmt"
	"sync"

	"carhire/models"
)

// MemorySourceRepo is an in-memory repository used by tests and mock
// deployments.
type MemorySourceRepo struct {
	mu      sync.RWMutex
	sources map[string]models.Source
}

func NewMemorySourceRepo() *MemorySourceRepo {
	return &MemorySourceRepo{sources: make(map[string]models.Source)}
}

// Put stores or replaces a source configuration.
func (repo *MemorySourceRepo) Put(src models.Source) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.sources[src.ID] = src
}

func (repo *MemorySourceRepo) GetByID(id string) (*models.Source, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	src, ok := repo.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s not found", id)
	}
	return &src, nil
}

func (repo *MemorySourceRepo) List() ([]models.Source, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	out := make([]models.Source, 0, len(repo.sources))
	for _, src := range repo.sources {
		out = append(out, src)
	}
	return out, nil
}
