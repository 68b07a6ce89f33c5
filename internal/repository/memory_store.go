package repository

import (
	"sort"
	"strings"
	"sync"

	"hospital-directory/internal/models"
)

// MemoryHospitalStore keeps the directory in process memory. It mirrors the
// SQL repository's behavior (bed derivation on every write, bounding-box
// proximity, substring specialty match) and backs the service when no
// database is wired, including tests.
type MemoryHospitalStore struct {
	mu        sync.RWMutex
	nextID    uint
	hospitals map[uint]models.Hospital
}

func NewMemoryHospitalStore() *MemoryHospitalStore {
	return &MemoryHospitalStore{
		nextID:    1,
		hospitals: map[uint]models.Hospital{},
	}
}

func (s *MemoryHospitalStore) Create(hospital *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hospital.DeriveLitsDisponibles()
	hospital.ID = s.nextID
	s.nextID++
	s.hospitals[hospital.ID] = *hospital
	return nil
}

func (s *MemoryHospitalStore) CreateBatch(hospitals []models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range hospitals {
		hospitals[i].DeriveLitsDisponibles()
		hospitals[i].ID = s.nextID
		s.nextID++
		s.hospitals[hospitals[i].ID] = hospitals[i]
	}
	return nil
}

func (s *MemoryHospitalStore) FindByID(id uint) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hospital, ok := s.hospitals[id]
	if !ok {
		return nil, models.ErrHospitalNotFound
	}
	return &hospital, nil
}

func (s *MemoryHospitalStore) FindAll() ([]models.Hospital, error) {
	return s.filter(func(models.Hospital) bool { return true }), nil
}

func (s *MemoryHospitalStore) Update(hospital *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hospitals[hospital.ID]; !ok {
		return models.ErrHospitalNotFound
	}
	hospital.DeriveLitsDisponibles()
	s.hospitals[hospital.ID] = *hospital
	return nil
}

func (s *MemoryHospitalStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hospitals[id]; !ok {
		return models.ErrHospitalNotFound
	}
	delete(s.hospitals, id)
	return nil
}

func (s *MemoryHospitalStore) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.hospitals)), nil
}

func (s *MemoryHospitalStore) FindByVille(ville string) ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		return h.Ville != nil && *h.Ville == ville
	}), nil
}

func (s *MemoryHospitalStore) FindBySpecialite(specialite string) ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		for _, sp := range h.SpecialitesPrincipales {
			if strings.Contains(sp, specialite) {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemoryHospitalStore) FindByUrgenceOuvert() ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		return h.UrgenceOuvert != nil && *h.UrgenceOuvert
	}), nil
}

func (s *MemoryHospitalStore) FindWithAvailableBeds() ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		return h.LitsDisponibles != nil && *h.LitsDisponibles > 0
	}), nil
}

func (s *MemoryHospitalStore) FindByNiveauSurcharge(niveau string) ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		return h.NiveauSurcharge != nil && *h.NiveauSurcharge == niveau
	}), nil
}

func (s *MemoryHospitalStore) FindByLitsDisponiblesGreaterThan(minLits int) ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		return h.LitsDisponibles != nil && *h.LitsDisponibles > minLits
	}), nil
}

func (s *MemoryHospitalStore) FindByProximity(latitude, longitude float64) ([]models.Hospital, error) {
	return s.filter(func(h models.Hospital) bool {
		if h.Latitude == nil || h.Longitude == nil {
			return false
		}
		return *h.Latitude >= latitude-0.1 && *h.Latitude <= latitude+0.1 &&
			*h.Longitude >= longitude-0.1 && *h.Longitude <= longitude+0.1
	}), nil
}

// filter scans all hospitals under the read lock; results come back in id
// order so repeated queries are stable.
func (s *MemoryHospitalStore) filter(keep func(models.Hospital) bool) []models.Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Hospital, 0, len(s.hospitals))
	for _, h := range s.hospitals {
		if keep(h) {
			results = append(results, h)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}
