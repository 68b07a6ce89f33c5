package models

import "errors"

// ErrHospitalNotFound is returned by store lookups for an unknown id.
var ErrHospitalNotFound = errors.New("hospital not found")

// Hospital represents a hospital record in the directory.
// Optional fields are pointers so that absent CSV cells and absent JSON
// fields stay distinguishable from zero values.
type Hospital struct {
	ID                       uint     `gorm:"primaryKey" json:"id"`
	NomHopital               string   `gorm:"column:nom_hopital;size:255;not null" json:"nomHopital"`
	Type                     *string  `gorm:"column:type;size:100" json:"type"`
	Ville                    *string  `gorm:"column:ville;size:100" json:"ville"`
	Telephone                *string  `gorm:"column:telephone;size:50" json:"telephone"`
	Adresse                  *string  `gorm:"column:adresse;type:text" json:"adresse"`
	LitsTotales              *int     `gorm:"column:lits_total" json:"litsTotales"`
	LitsOccupees             *int     `gorm:"column:lits_occupees" json:"litsOccupees"`
	LitsDisponibles          *int     `gorm:"column:lits_disponibles" json:"litsDisponibles"`
	SpecialitesPrincipales   []string `gorm:"-" json:"specialitesPrincipales"`
	Latitude                 *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude                *float64 `gorm:"column:longitude" json:"longitude"`
	UrgenceOuvert            *bool    `gorm:"column:urgence_ouvert" json:"urgenceOuvert"`
	TempsAttenteUrgence      *int     `gorm:"column:temps_attente_urgence" json:"tempsAttenteUrgence"`
	NiveauSurcharge          *string  `gorm:"column:niveau_surcharge;size:50" json:"niveauSurcharge"`
	NbMedecinsDisponibles    *int     `gorm:"column:nb_medecins_disponibles" json:"nbMedecinsDisponibles"`
	NbInfirmiersDisponibles  *int     `gorm:"column:nb_infirmiers_disponibles" json:"nbInfirmiersDisponibles"`
	NbAmbulancesDisponibles  *int     `gorm:"column:nb_ambulances_disponibles" json:"nbAmbulancesDisponibles"`
	RespirateursDisponibles  *int     `gorm:"column:respirateurs_disponibles" json:"respirateursDisponibles"`
	BlocOperatoireDisponible *bool    `gorm:"column:bloc_operatoire_disponible" json:"blocOperatoireDisponible"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// HospitalSpecialite is one row of the ordered specialty list. Position
// preserves CSV/payload order across reloads.
type HospitalSpecialite struct {
	HospitalID uint   `gorm:"column:hospital_id;primaryKey;autoIncrement:false"`
	Position   int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	Specialite string `gorm:"column:specialite;size:255"`
}

// TableName specifies the table name for HospitalSpecialite model
func (HospitalSpecialite) TableName() string {
	return "hospital_specialites"
}

// DeriveLitsDisponibles re-establishes the bed invariant: when both the
// total and occupied counts are known, the available count is their
// difference. With either operand missing the field keeps whatever value
// it carries. Every write path must call this before persisting.
func (h *Hospital) DeriveLitsDisponibles() {
	if h.LitsTotales != nil && h.LitsOccupees != nil {
		disponibles := *h.LitsTotales - *h.LitsOccupees
		h.LitsDisponibles = &disponibles
	}
}
