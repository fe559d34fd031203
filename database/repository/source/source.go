package sourceRepo

import "carhire/models"

// SourceRepository defines data access for supplier connection configuration.
type SourceRepository interface {
	// GetByID retrieves a source configuration by id.
	GetByID(id string) (*models.Source, error)
	// List retrieves all configured sources.
	List() ([]models.Source, error)
}
