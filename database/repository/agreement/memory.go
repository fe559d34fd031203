package agreementRepo

import (
	"fmt"
	"sync"

	"carhire/models"
)

// MemoryAgreementRepo is an in-memory repository used by tests and mock
// deployments.
type MemoryAgreementRepo struct {
	mu         sync.RWMutex
	agreements map[string]models.Agreement
}

func NewMemoryAgreementRepo() *MemoryAgreementRepo {
	return &MemoryAgreementRepo{agreements: make(map[string]models.Agreement)}
}

// Put stores or replaces an agreement.
func (repo *MemoryAgreementRepo) Put(agr models.Agreement) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.agreements[agr.Ref] = agr
}

func (repo *MemoryAgreementRepo) GetByRef(ref string) (*models.Agreement, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	agr, ok := repo.agreements[ref]
	if !ok {
		return nil, fmt.Errorf("agreement %s not found", ref)
	}
	return &agr, nil
}

func (repo *MemoryAgreementRepo) ListByAgent(agentID string) ([]models.Agreement, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	var out []models.Agreement
	for _, agr := range repo.agreements {
		if agr.AgentID == agentID {
			out = append(out, agr)
		}
	}
	return out, nil
}
