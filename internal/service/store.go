package service

import "hospital-directory/internal/models"

// HospitalStore is the persistence surface the services depend on.
// repository.HospitalRepository is the production implementation; tests use
// an in-memory one. Lookup methods return models.ErrHospitalNotFound for an
// unknown id.
type HospitalStore interface {
	Create(hospital *models.Hospital) error
	CreateBatch(hospitals []models.Hospital) error
	FindByID(id uint) (*models.Hospital, error)
	FindAll() ([]models.Hospital, error)
	Update(hospital *models.Hospital) error
	Delete(id uint) error
	Count() (int64, error)

	FindByVille(ville string) ([]models.Hospital, error)
	FindBySpecialite(specialite string) ([]models.Hospital, error)
	FindByUrgenceOuvert() ([]models.Hospital, error)
	FindWithAvailableBeds() ([]models.Hospital, error)
	FindByNiveauSurcharge(niveau string) ([]models.Hospital, error)
	FindByLitsDisponiblesGreaterThan(minLits int) ([]models.Hospital, error)
	FindByProximity(latitude, longitude float64) ([]models.Hospital, error)
}
