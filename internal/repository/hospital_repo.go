package repository

import (
	"errors"

	"hospital-directory/internal/models"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// Create inserts a new hospital and its specialty rows, assigning a fresh id.
func (r *HospitalRepository) Create(hospital *models.Hospital) error {
	hospital.DeriveLitsDisponibles()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hospital).Error; err != nil {
			return err
		}
		return replaceSpecialites(tx, hospital.ID, hospital.SpecialitesPrincipales)
	})
}

// CreateBatch inserts all hospitals in a single transaction. Used by the
// CSV bootstrap; either every row lands or none does.
func (r *HospitalRepository) CreateBatch(hospitals []models.Hospital) error {
	if len(hospitals) == 0 {
		return nil
	}
	for i := range hospitals {
		hospitals[i].DeriveLitsDisponibles()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hospitals).Error; err != nil {
			return err
		}
		for i := range hospitals {
			if err := replaceSpecialites(tx, hospitals[i].ID, hospitals[i].SpecialitesPrincipales); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID retrieves a hospital by ID
func (r *HospitalRepository) FindByID(id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.First(&hospital, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrHospitalNotFound
		}
		return nil, err
	}
	if err := r.attachSpecialites(&hospital); err != nil {
		return nil, err
	}
	return &hospital, nil
}

// FindAll retrieves every hospital with its specialty list attached
func (r *HospitalRepository) FindAll() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// Update persists a full hospital record, replacing its specialty rows.
func (r *HospitalRepository) Update(hospital *models.Hospital) error {
	hospital.DeriveLitsDisponibles()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(hospital).Error; err != nil {
			return err
		}
		return replaceSpecialites(tx, hospital.ID, hospital.SpecialitesPrincipales)
	})
}

// Delete removes a hospital and its specialty rows
func (r *HospitalRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hospital_id = ?", id).Delete(&models.HospitalSpecialite{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Hospital{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrHospitalNotFound
		}
		return nil
	})
}

// Count returns the number of hospital rows
func (r *HospitalRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Hospital{}).Count(&count).Error
	return count, err
}

// FindByVille retrieves hospitals in a city, exact match
func (r *HospitalRepository) FindByVille(ville string) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Where("ville = ?", ville).Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindBySpecialite retrieves hospitals whose specialty list holds a
// matching element, substring match
func (r *HospitalRepository) FindBySpecialite(specialite string) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.
		Distinct("hospitals.*").
		Joins("INNER JOIN hospital_specialites ON hospital_specialites.hospital_id = hospitals.id").
		Where("hospital_specialites.specialite LIKE ?", "%"+specialite+"%").
		Find(&hospitals).Error
	if err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindByUrgenceOuvert retrieves hospitals whose emergency department is open
func (r *HospitalRepository) FindByUrgenceOuvert() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Where("urgence_ouvert = ?", true).Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindWithAvailableBeds retrieves hospitals with at least one free bed
func (r *HospitalRepository) FindWithAvailableBeds() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Where("lits_disponibles > 0").Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindByNiveauSurcharge retrieves hospitals at an overload level, exact match
func (r *HospitalRepository) FindByNiveauSurcharge(niveau string) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Where("niveau_surcharge = ?", niveau).Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindByLitsDisponiblesGreaterThan retrieves hospitals with strictly more
// than minLits free beds
func (r *HospitalRepository) FindByLitsDisponiblesGreaterThan(minLits int) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.Where("lits_disponibles > ?", minLits).Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// FindByProximity retrieves hospitals inside a 0.1-degree bounding box
// around the given point. Callers refine the box with a real distance check.
func (r *HospitalRepository) FindByProximity(latitude, longitude float64) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.
		Where("latitude BETWEEN ? AND ?", latitude-0.1, latitude+0.1).
		Where("longitude BETWEEN ? AND ?", longitude-0.1, longitude+0.1).
		Find(&hospitals).Error
	if err != nil {
		return nil, err
	}
	return hospitals, r.attachAllSpecialites(hospitals)
}

// replaceSpecialites rewrites the ordered specialty rows for one hospital.
// A nil or empty list clears nothing beyond the delete, matching the
// element-collection semantics of the original schema.
func replaceSpecialites(tx *gorm.DB, hospitalID uint, specialites []string) error {
	if err := tx.Where("hospital_id = ?", hospitalID).Delete(&models.HospitalSpecialite{}).Error; err != nil {
		return err
	}
	if len(specialites) == 0 {
		return nil
	}
	rows := make([]models.HospitalSpecialite, 0, len(specialites))
	for i, s := range specialites {
		rows = append(rows, models.HospitalSpecialite{
			HospitalID: hospitalID,
			Position:   i,
			Specialite: s,
		})
	}
	return tx.Create(&rows).Error
}

func (r *HospitalRepository) attachSpecialites(hospital *models.Hospital) error {
	var rows []models.HospitalSpecialite
	err := r.db.
		Where("hospital_id = ?", hospital.ID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	specialites := make([]string, 0, len(rows))
	for _, row := range rows {
		specialites = append(specialites, row.Specialite)
	}
	if len(specialites) > 0 {
		hospital.SpecialitesPrincipales = specialites
	}
	return nil
}

func (r *HospitalRepository) attachAllSpecialites(hospitals []models.Hospital) error {
	if len(hospitals) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(hospitals))
	for i := range hospitals {
		ids = append(ids, hospitals[i].ID)
	}
	var rows []models.HospitalSpecialite
	err := r.db.
		Where("hospital_id IN ?", ids).
		Order("hospital_id ASC, position ASC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	byHospital := make(map[uint][]string)
	for _, row := range rows {
		byHospital[row.HospitalID] = append(byHospital[row.HospitalID], row.Specialite)
	}
	for i := range hospitals {
		if specialites, ok := byHospital[hospitals[i].ID]; ok {
			hospitals[i].SpecialitesPrincipales = specialites
		}
	}
	return nil
}
