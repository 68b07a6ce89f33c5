package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hospital-directory/internal/models"
	"hospital-directory/internal/service"
	"hospital-directory/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitalService *service.HospitalService
}

func NewHospitalHandler(hospitalService *service.HospitalService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
	}
}

// CreateHospital creates a new hospital
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var hospital models.Hospital
	if err := c.ShouldBindJSON(&hospital); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.hospitalService.Create(&hospital)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetAllHospitals lists every hospital
func (h *HospitalHandler) GetAllHospitals(c *gin.Context) {
	hospitals, err := h.hospitalService.GetAll()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetHospital retrieves a specific hospital by ID
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	hospital, err := h.hospitalService.GetByID(id)
	if err != nil {
		respondLookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, hospital)
}

// UpdateHospital applies a partial-merge update to an existing hospital
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload models.Hospital
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.Update(id, &payload)
	if err != nil {
		respondLookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, hospital)
}

// DeleteHospital removes a hospital
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.hospitalService.Delete(id); err != nil {
		respondLookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetHospitalsByVille lists hospitals in a city
func (h *HospitalHandler) GetHospitalsByVille(c *gin.Context) {
	hospitals, err := h.hospitalService.GetByVille(c.Param("ville"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetEmergencyHospitals lists hospitals with an open emergency department
func (h *HospitalHandler) GetEmergencyHospitals(c *gin.Context) {
	hospitals, err := h.hospitalService.GetEmergencyHospitals()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetHospitalsWithAvailableBeds lists hospitals with at least one free bed
func (h *HospitalHandler) GetHospitalsWithAvailableBeds(c *gin.Context) {
	hospitals, err := h.hospitalService.GetWithAvailableBeds()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetHospitalsBySpecialite lists hospitals offering a specialty
func (h *HospitalHandler) GetHospitalsBySpecialite(c *gin.Context) {
	hospitals, err := h.hospitalService.GetBySpecialite(c.Param("specialite"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetHospitalsBySurchargeLevel lists hospitals at an overload level
func (h *HospitalHandler) GetHospitalsBySurchargeLevel(c *gin.Context) {
	hospitals, err := h.hospitalService.GetBySurchargeLevel(c.Param("niveau"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// UpdateBedStatus sets the occupied-bed count for a hospital
func (h *HospitalHandler) UpdateBedStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	litsOccupees, err := strconv.Atoi(c.Query("litsOccupees"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "litsOccupees query parameter is required and must be an integer")
		return
	}

	hospital, err := h.hospitalService.UpdateBedStatus(id, litsOccupees)
	if err != nil {
		respondLookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, hospital)
}

// UpdateResources sets staff and equipment counters for a hospital.
// Absent query parameters leave their counters untouched.
func (h *HospitalHandler) UpdateResources(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	medecins, ok := optionalIntQuery(c, "medecins")
	if !ok {
		return
	}
	infirmiers, ok := optionalIntQuery(c, "infirmiers")
	if !ok {
		return
	}
	ambulances, ok := optionalIntQuery(c, "ambulances")
	if !ok {
		return
	}
	respirateurs, ok := optionalIntQuery(c, "respirateurs")
	if !ok {
		return
	}

	hospital, err := h.hospitalService.UpdateResources(id, medecins, infirmiers, ambulances, respirateurs)
	if err != nil {
		respondLookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, hospital)
}

// FindNearbyHospitals lists hospitals within radiusKm of a point
func (h *HospitalHandler) FindNearbyHospitals(c *gin.Context) {
	latitude, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "latitude query parameter is required")
		return
	}
	longitude, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "longitude query parameter is required")
		return
	}
	radiusKm, err := strconv.ParseFloat(c.DefaultQuery("radiusKm", "10.0"), 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "radiusKm must be a number")
		return
	}

	hospitals, err := h.hospitalService.FindNearby(latitude, longitude, radiusKm)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// GetRecommendedHospitals lists hospitals by branch priority:
// urgence > specialite > ville > all
func (h *HospitalHandler) GetRecommendedHospitals(c *gin.Context) {
	specialite := c.Query("specialite")
	ville := c.Query("ville")
	urgence := c.DefaultQuery("urgence", "false") == "true"
	minLits, err := strconv.Atoi(c.DefaultQuery("minLits", "0"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "minLits must be an integer")
		return
	}

	hospitals, err := h.hospitalService.Recommend(specialite, ville, urgence, minLits)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

// SearchHospitals composes independent filters over the full listing
func (h *HospitalHandler) SearchHospitals(c *gin.Context) {
	ville := c.Query("ville")
	specialite := c.Query("specialite")

	var urgence *bool
	if raw := c.Query("urgence"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "urgence must be a boolean")
			return
		}
		urgence = &parsed
	}

	minLits := 0
	if raw := c.Query("minLits"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "minLits must be an integer")
			return
		}
		minLits = parsed
	}

	hospitals, err := h.hospitalService.Search(ville, specialite, urgence, minLits)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return 0, false
	}
	return uint(id), true
}

func respondLookupError(c *gin.Context, id uint, err error) {
	if errors.Is(err, models.ErrHospitalNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, "Hospital not found with id: "+strconv.FormatUint(uint64(id), 10))
		return
	}
	utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
}

func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, name+" must be an integer")
		return nil, false
	}
	return &n, true
}
