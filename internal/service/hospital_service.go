package service

import (
	"fmt"
	"math"
	"strings"

	"hospital-directory/internal/models"

	"go.uber.org/zap"
)

const earthRadiusKm = 6371.0

type HospitalService struct {
	store  HospitalStore
	logger *zap.Logger
}

func NewHospitalService(store HospitalStore, logger *zap.Logger) *HospitalService {
	return &HospitalService{
		store:  store,
		logger: logger,
	}
}

// Create inserts a new hospital; the store assigns the id and
// re-establishes the bed invariant.
func (s *HospitalService) Create(hospital *models.Hospital) (*models.Hospital, error) {
	if err := s.store.Create(hospital); err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}
	s.logger.Info("Hospital created",
		zap.Uint("id", hospital.ID), zap.String("nom", hospital.NomHopital))
	return hospital, nil
}

// GetByID retrieves a hospital by ID
func (s *HospitalService) GetByID(id uint) (*models.Hospital, error) {
	return s.store.FindByID(id)
}

// GetAll retrieves all hospitals
func (s *HospitalService) GetAll() ([]models.Hospital, error) {
	return s.store.FindAll()
}

// Update applies a partial merge: every non-nil field of the payload
// overwrites the stored field, nil fields are preserved. The specialty list
// is only replaced when the payload carries a non-empty one, so an update
// cannot clear specialties.
func (s *HospitalService) Update(id uint, payload *models.Hospital) (*models.Hospital, error) {
	hospital, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}

	if payload.NomHopital != "" {
		hospital.NomHopital = payload.NomHopital
	}
	if payload.Type != nil {
		hospital.Type = payload.Type
	}
	if payload.Ville != nil {
		hospital.Ville = payload.Ville
	}
	if payload.Telephone != nil {
		hospital.Telephone = payload.Telephone
	}
	if payload.Adresse != nil {
		hospital.Adresse = payload.Adresse
	}
	if payload.LitsTotales != nil {
		hospital.LitsTotales = payload.LitsTotales
	}
	if payload.LitsOccupees != nil {
		hospital.LitsOccupees = payload.LitsOccupees
	}
	if payload.LitsDisponibles != nil {
		hospital.LitsDisponibles = payload.LitsDisponibles
	}
	if len(payload.SpecialitesPrincipales) > 0 {
		hospital.SpecialitesPrincipales = payload.SpecialitesPrincipales
	}
	if payload.Latitude != nil {
		hospital.Latitude = payload.Latitude
	}
	if payload.Longitude != nil {
		hospital.Longitude = payload.Longitude
	}
	if payload.UrgenceOuvert != nil {
		hospital.UrgenceOuvert = payload.UrgenceOuvert
	}
	if payload.TempsAttenteUrgence != nil {
		hospital.TempsAttenteUrgence = payload.TempsAttenteUrgence
	}
	if payload.NiveauSurcharge != nil {
		hospital.NiveauSurcharge = payload.NiveauSurcharge
	}
	if payload.NbMedecinsDisponibles != nil {
		hospital.NbMedecinsDisponibles = payload.NbMedecinsDisponibles
	}
	if payload.NbInfirmiersDisponibles != nil {
		hospital.NbInfirmiersDisponibles = payload.NbInfirmiersDisponibles
	}
	if payload.NbAmbulancesDisponibles != nil {
		hospital.NbAmbulancesDisponibles = payload.NbAmbulancesDisponibles
	}
	if payload.RespirateursDisponibles != nil {
		hospital.RespirateursDisponibles = payload.RespirateursDisponibles
	}
	if payload.BlocOperatoireDisponible != nil {
		hospital.BlocOperatoireDisponible = payload.BlocOperatoireDisponible
	}

	if err := s.store.Update(hospital); err != nil {
		return nil, fmt.Errorf("failed to update hospital: %w", err)
	}
	return hospital, nil
}

// Delete removes a hospital by ID
func (s *HospitalService) Delete(id uint) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Hospital deleted", zap.Uint("id", id))
	return nil
}

// UpdateBedStatus sets the occupied-bed count and re-derives availability
func (s *HospitalService) UpdateBedStatus(id uint, litsOccupees int) (*models.Hospital, error) {
	hospital, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	hospital.LitsOccupees = &litsOccupees
	if err := s.store.Update(hospital); err != nil {
		return nil, fmt.Errorf("failed to update bed status: %w", err)
	}
	return hospital, nil
}

// UpdateResources sets the staff and equipment counters; nil arguments
// leave the stored value untouched.
func (s *HospitalService) UpdateResources(id uint, medecins, infirmiers, ambulances, respirateurs *int) (*models.Hospital, error) {
	hospital, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if medecins != nil {
		hospital.NbMedecinsDisponibles = medecins
	}
	if infirmiers != nil {
		hospital.NbInfirmiersDisponibles = infirmiers
	}
	if ambulances != nil {
		hospital.NbAmbulancesDisponibles = ambulances
	}
	if respirateurs != nil {
		hospital.RespirateursDisponibles = respirateurs
	}
	if err := s.store.Update(hospital); err != nil {
		return nil, fmt.Errorf("failed to update resources: %w", err)
	}
	return hospital, nil
}

// GetByVille retrieves hospitals in a city, exact match
func (s *HospitalService) GetByVille(ville string) ([]models.Hospital, error) {
	return s.store.FindByVille(ville)
}

// GetBySpecialite retrieves hospitals offering a specialty, substring match
func (s *HospitalService) GetBySpecialite(specialite string) ([]models.Hospital, error) {
	return s.store.FindBySpecialite(specialite)
}

// GetEmergencyHospitals retrieves hospitals with an open emergency department
func (s *HospitalService) GetEmergencyHospitals() ([]models.Hospital, error) {
	return s.store.FindByUrgenceOuvert()
}

// GetWithAvailableBeds retrieves hospitals with at least one free bed
func (s *HospitalService) GetWithAvailableBeds() ([]models.Hospital, error) {
	return s.store.FindWithAvailableBeds()
}

// GetBySurchargeLevel retrieves hospitals at an overload level, exact match
func (s *HospitalService) GetBySurchargeLevel(niveau string) ([]models.Hospital, error) {
	return s.store.FindByNiveauSurcharge(niveau)
}

// GetWithMinBeds retrieves hospitals with strictly more than minBeds free beds
func (s *HospitalService) GetWithMinBeds(minBeds int) ([]models.Hospital, error) {
	return s.store.FindByLitsDisponiblesGreaterThan(minBeds)
}

// FindNearby retrieves hospitals within radiusKm of a point. The store
// prefilters with a bounding box; the great-circle distance decides.
// Hospitals without coordinates are treated as infinitely far.
func (s *HospitalService) FindNearby(latitude, longitude, radiusKm float64) ([]models.Hospital, error) {
	candidates, err := s.store.FindByProximity(latitude, longitude)
	if err != nil {
		return nil, err
	}
	nearby := make([]models.Hospital, 0, len(candidates))
	for _, h := range candidates {
		if distanceKm(latitude, longitude, h.Latitude, h.Longitude) <= radiusKm {
			nearby = append(nearby, h)
		}
	}
	return nearby, nil
}

// Recommend returns hospitals by branch priority: an emergency request wins
// over a specialty filter, which wins over a city filter; with no criteria
// every hospital is returned. Only the first matching branch runs.
func (s *HospitalService) Recommend(specialite, ville string, urgence bool, minLits int) ([]models.Hospital, error) {
	switch {
	case urgence:
		hospitals, err := s.store.FindByUrgenceOuvert()
		if err != nil {
			return nil, err
		}
		if minLits > 0 {
			filtered := make([]models.Hospital, 0, len(hospitals))
			for _, h := range hospitals {
				if h.LitsDisponibles != nil && *h.LitsDisponibles >= minLits {
					filtered = append(filtered, h)
				}
			}
			hospitals = filtered
		}
		return hospitals, nil
	case specialite != "":
		return s.store.FindBySpecialite(specialite)
	case ville != "":
		return s.store.FindByVille(ville)
	default:
		return s.store.FindAll()
	}
}

// Search composes independent in-memory predicates over the full scan.
// Text matches are case-insensitive; a blank or zero argument skips its
// predicate.
func (s *HospitalService) Search(ville, specialite string, urgence *bool, minLits int) ([]models.Hospital, error) {
	results, err := s.store.FindAll()
	if err != nil {
		return nil, err
	}

	if ville != "" {
		filtered := make([]models.Hospital, 0, len(results))
		for _, h := range results {
			if h.Ville != nil && strings.EqualFold(*h.Ville, ville) {
				filtered = append(filtered, h)
			}
		}
		results = filtered
	}

	if specialite != "" {
		needle := strings.ToLower(specialite)
		filtered := make([]models.Hospital, 0, len(results))
		for _, h := range results {
			for _, sp := range h.SpecialitesPrincipales {
				if strings.Contains(strings.ToLower(sp), needle) {
					filtered = append(filtered, h)
					break
				}
			}
		}
		results = filtered
	}

	if urgence != nil {
		filtered := make([]models.Hospital, 0, len(results))
		for _, h := range results {
			if h.UrgenceOuvert != nil && *h.UrgenceOuvert == *urgence {
				filtered = append(filtered, h)
			}
		}
		results = filtered
	}

	if minLits > 0 {
		filtered := make([]models.Hospital, 0, len(results))
		for _, h := range results {
			if h.LitsDisponibles != nil && *h.LitsDisponibles >= minLits {
				filtered = append(filtered, h)
			}
		}
		results = filtered
	}

	return results, nil
}

// distanceKm computes the haversine great-circle distance. A missing
// coordinate pushes the hospital out of any radius.
func distanceKm(lat1, lon1 float64, lat2, lon2 *float64) float64 {
	if lat2 == nil || lon2 == nil {
		return math.MaxFloat64
	}
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(*lat2)
	deltaLat := toRadians(*lat2 - lat1)
	deltaLon := toRadians(*lon2 - lon1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
