package bookingRepo

import (
	"fmt"
	"sync"

	"carhire/models"
)

// MemoryBookingRepo is an in-memory repository used by tests and mock
// deployments.
type MemoryBookingRepo struct {
	mu     sync.RWMutex
	byRef  map[string]models.BookingRecord
	byIdem map[string]string // "agentID|key" -> supplierBookingRef
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		byRef:  make(map[string]models.BookingRecord),
		byIdem: make(map[string]string),
	}
}

func idemKey(agentID, key string) string {
	return agentID + "|" + key
}

func (repo *MemoryBookingRepo) Create(rec *models.BookingRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.byRef[rec.SupplierBookingRef] = *rec
	if rec.IdempotencyKey != "" {
		repo.byIdem[idemKey(rec.AgentID, rec.IdempotencyKey)] = rec.SupplierBookingRef
	}
	return nil
}

func (repo *MemoryBookingRepo) GetByRef(supplierBookingRef string) (*models.BookingRecord, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	rec, ok := repo.byRef[supplierBookingRef]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", supplierBookingRef)
	}
	return &rec, nil
}

func (repo *MemoryBookingRepo) GetByIdempotencyKey(agentID, key string) (*models.BookingRecord, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	ref, ok := repo.byIdem[idemKey(agentID, key)]
	if !ok {
		return nil, fmt.Errorf("no booking for idempotency key")
	}
	rec := repo.byRef[ref]
	return &rec, nil
}

func (repo *MemoryBookingRepo) Update(rec *models.BookingRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.byRef[rec.SupplierBookingRef]; !ok {
		return fmt.Errorf("booking %s not found", rec.SupplierBookingRef)
	}
	repo.byRef[rec.SupplierBookingRef] = *rec
	return nil
}
