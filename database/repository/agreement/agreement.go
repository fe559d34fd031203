package agreementRepo

import "carhire/models"

// AgreementRepository defines data access for agent/source agreements.
// Agreements are provisioned by an external back-office system; the broker
// only reads them.
type AgreementRepository interface {
	// GetByRef retrieves an agreement by its reference.
	GetByRef(ref string) (*models.Agreement, error)
	// ListByAgent retrieves all agreements owned by an agent.
	ListByAgent(agentID string) ([]models.Agreement, error)
}
