package service

import (
	"math"
	"testing"

	"hospital-directory/internal/models"
	"hospital-directory/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*HospitalService, *repository.MemoryHospitalStore) {
	store := repository.NewMemoryHospitalStore()
	return NewHospitalService(store, zap.NewNop()), store
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func seed(t *testing.T, svc *HospitalService, h models.Hospital) *models.Hospital {
	t.Helper()
	created, err := svc.Create(&h)
	require.NoError(t, err)
	return created
}

func TestCreateDerivesAvailableBeds(t *testing.T) {
	svc, _ := newTestService()

	created := seed(t, svc, models.Hospital{
		NomHopital:   "Hôpital A",
		LitsTotales:  intPtr(50),
		LitsOccupees: intPtr(20),
	})

	fetched, err := svc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *fetched.LitsDisponibles)
}

func TestUpdateBedStatus(t *testing.T) {
	svc, _ := newTestService()
	created := seed(t, svc, models.Hospital{
		NomHopital:   "Hôpital B",
		LitsTotales:  intPtr(50),
		LitsOccupees: intPtr(20),
	})

	updated, err := svc.UpdateBedStatus(created.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, *updated.LitsOccupees)
	assert.Equal(t, 10, *updated.LitsDisponibles)
}

func TestUpdateBedStatusUnknownID(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdateBedStatus(42, 10)
	assert.ErrorIs(t, err, models.ErrHospitalNotFound)
}

func TestUpdateIsPartialMerge(t *testing.T) {
	svc, _ := newTestService()
	created := seed(t, svc, models.Hospital{
		NomHopital:             "Hôpital C",
		Ville:                  strPtr("Paris"),
		Telephone:              strPtr("0102030405"),
		LitsTotales:            intPtr(100),
		LitsOccupees:           intPtr(60),
		SpecialitesPrincipales: []string{"cardio", "neuro"},
	})

	updated, err := svc.Update(created.ID, &models.Hospital{
		Ville:        strPtr("Lyon"),
		LitsOccupees: intPtr(80),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hôpital C", updated.NomHopital)
	assert.Equal(t, "Lyon", *updated.Ville)
	assert.Equal(t, "0102030405", *updated.Telephone)
	assert.Equal(t, 100, *updated.LitsTotales)
	assert.Equal(t, 80, *updated.LitsOccupees)
	assert.Equal(t, 20, *updated.LitsDisponibles)
	assert.Equal(t, []string{"cardio", "neuro"}, updated.SpecialitesPrincipales)
}

func TestUpdateCannotClearSpecialites(t *testing.T) {
	svc, _ := newTestService()
	created := seed(t, svc, models.Hospital{
		NomHopital:             "Hôpital D",
		SpecialitesPrincipales: []string{"cardio"},
	})

	updated, err := svc.Update(created.ID, &models.Hospital{
		SpecialitesPrincipales: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cardio"}, updated.SpecialitesPrincipales)
}

func TestDeleteUnknownID(t *testing.T) {
	svc, _ := newTestService()
	assert.ErrorIs(t, svc.Delete(7), models.ErrHospitalNotFound)
}

func TestUpdateResources(t *testing.T) {
	svc, _ := newTestService()
	created := seed(t, svc, models.Hospital{
		NomHopital:            "Hôpital E",
		NbMedecinsDisponibles: intPtr(10),
	})

	updated, err := svc.UpdateResources(created.ID, nil, intPtr(25), intPtr(4), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, *updated.NbMedecinsDisponibles)
	assert.Equal(t, 25, *updated.NbInfirmiersDisponibles)
	assert.Equal(t, 4, *updated.NbAmbulancesDisponibles)
	assert.Nil(t, updated.RespirateursDisponibles)
}

func TestGetWithMinBedsIsStrict(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, models.Hospital{NomHopital: "H5", LitsDisponibles: intPtr(5)})
	seed(t, svc, models.Hospital{NomHopital: "H6", LitsDisponibles: intPtr(6)})

	hospitals, err := svc.GetWithMinBeds(5)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "H6", hospitals[0].NomHopital)
}

func TestRecommendUrgenceBranchFiltersBeds(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, models.Hospital{
		NomHopital:      "Urgences 3 lits",
		UrgenceOuvert:   boolPtr(true),
		LitsDisponibles: intPtr(3),
	})
	seed(t, svc, models.Hospital{
		NomHopital:      "Urgences 10 lits",
		UrgenceOuvert:   boolPtr(true),
		LitsDisponibles: intPtr(10),
	})

	hospitals, err := svc.Recommend("", "", true, 5)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Urgences 10 lits", hospitals[0].NomHopital)
}

func TestRecommendBranchPriority(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, models.Hospital{
		NomHopital:             "Urgences Paris",
		Ville:                  strPtr("Paris"),
		UrgenceOuvert:          boolPtr(true),
		SpecialitesPrincipales: []string{"cardio"},
	})
	seed(t, svc, models.Hospital{
		NomHopital:             "Clinique Lyon",
		Ville:                  strPtr("Lyon"),
		UrgenceOuvert:          boolPtr(false),
		SpecialitesPrincipales: []string{"pneumo"},
	})

	// urgence wins even with a specialty and city supplied
	hospitals, err := svc.Recommend("pneumo", "Lyon", true, 0)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Urgences Paris", hospitals[0].NomHopital)

	// specialty wins over city
	hospitals, err = svc.Recommend("pneumo", "Paris", false, 0)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Clinique Lyon", hospitals[0].NomHopital)

	// city alone
	hospitals, err = svc.Recommend("", "Paris", false, 0)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Urgences Paris", hospitals[0].NomHopital)

	// no criteria: everything
	hospitals, err = svc.Recommend("", "", false, 0)
	require.NoError(t, err)
	assert.Len(t, hospitals, 2)
}

func TestFindNearby(t *testing.T) {
	svc, _ := newTestService()
	// center: Paris
	seed(t, svc, models.Hospital{
		NomHopital: "Au centre",
		Latitude:   floatPtr(48.8566),
		Longitude:  floatPtr(2.3522),
	})
	// ~5.5 km north, inside a 10 km radius
	seed(t, svc, models.Hospital{
		NomHopital: "Proche",
		Latitude:   floatPtr(48.9066),
		Longitude:  floatPtr(2.3522),
	})
	// ~11 km north: inside the bounding box, outside the radius
	seed(t, svc, models.Hospital{
		NomHopital: "Trop loin",
		Latitude:   floatPtr(48.9566),
		Longitude:  floatPtr(2.3522),
	})
	// no coordinates
	seed(t, svc, models.Hospital{NomHopital: "Sans position"})

	hospitals, err := svc.FindNearby(48.8566, 2.3522, 10.0)
	require.NoError(t, err)
	require.Len(t, hospitals, 2)
	assert.Equal(t, "Au centre", hospitals[0].NomHopital)
	assert.Equal(t, "Proche", hospitals[1].NomHopital)
}

func TestDistanceKm(t *testing.T) {
	// Paris to Marseille, roughly 660 km
	d := distanceKm(48.8566, 2.3522, floatPtr(43.2965), floatPtr(5.3698))
	assert.InDelta(t, 660, d, 10)

	assert.Equal(t, math.MaxFloat64, distanceKm(48.8566, 2.3522, nil, floatPtr(5.3698)))
	assert.Equal(t, math.MaxFloat64, distanceKm(48.8566, 2.3522, floatPtr(43.2965), nil))
}

func TestSearchComposesFilters(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, models.Hospital{
		NomHopital:             "Hôpital Paris cardio",
		Ville:                  strPtr("Paris"),
		SpecialitesPrincipales: []string{"Cardiologie"},
		UrgenceOuvert:          boolPtr(true),
		LitsDisponibles:        intPtr(8),
	})
	seed(t, svc, models.Hospital{
		NomHopital:             "Hôpital Paris pneumo",
		Ville:                  strPtr("Paris"),
		SpecialitesPrincipales: []string{"Pneumologie"},
		UrgenceOuvert:          boolPtr(false),
		LitsDisponibles:        intPtr(2),
	})
	seed(t, svc, models.Hospital{
		NomHopital: "Hôpital Lyon",
		Ville:      strPtr("Lyon"),
	})

	// city filter is case-insensitive
	hospitals, err := svc.Search("paris", "", nil, 0)
	require.NoError(t, err)
	assert.Len(t, hospitals, 2)

	// specialty is a case-insensitive substring match
	hospitals, err = svc.Search("", "cardio", nil, 0)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Hôpital Paris cardio", hospitals[0].NomHopital)

	// filters compose
	hospitals, err = svc.Search("Paris", "", boolPtr(true), 5)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Hôpital Paris cardio", hospitals[0].NomHopital)

	// minLits is inclusive
	hospitals, err = svc.Search("", "", nil, 2)
	require.NoError(t, err)
	assert.Len(t, hospitals, 2)

	// no criteria returns everything
	hospitals, err = svc.Search("", "", nil, 0)
	require.NoError(t, err)
	assert.Len(t, hospitals, 3)
}
