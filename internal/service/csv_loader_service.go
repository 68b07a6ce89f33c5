package service

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"hospital-directory/internal/models"

	"go.uber.org/zap"
)

var (
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
	specialiteListRe = regexp.MustCompile(`,\s*`)
)

// CsvLoaderService bootstraps the store from a semicolon-delimited CSV
// file. It runs once at startup and tolerates spreadsheet-export noise:
// a UTF-8 BOM, header variants (case, trailing spaces, zero-width
// characters), European decimal commas, bilingual boolean synonyms and
// partially filled rows. A row only fails for a blank hospital name;
// a failed cell just becomes null.
type CsvLoaderService struct {
	store    HospitalStore
	filePath string
	logger   *zap.Logger
}

func NewCsvLoaderService(store HospitalStore, filePath string, logger *zap.Logger) *CsvLoaderService {
	return &CsvLoaderService{
		store:    store,
		filePath: filePath,
		logger:   logger,
	}
}

// fieldSpec binds one Hospital field to its ordered header aliases and the
// setter that coerces a raw cell into it. First alias with a non-blank
// value wins.
type fieldSpec struct {
	name    string
	aliases []string
	assign  func(l *CsvLoaderService, h *models.Hospital, value string, line int)
}

var hospitalFields = []fieldSpec{
	{"nomHopital", []string{"NomHopital", "nomhopital", "nom_hopital", "nom"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.NomHopital = v }},
	{"type", []string{"Type", "type"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.Type = &v }},
	{"ville", []string{"Ville", "ville", "Ville "},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.Ville = &v }},
	{"telephone", []string{"Telephone", "telephone", "tel"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.Telephone = &v }},
	{"adresse", []string{"Adresse", "adresse", "Adresse "},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.Adresse = &v }},
	{"litsTotales", []string{"LitsTotales", "litstotales", "lits_total"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.LitsTotales = l.coerceInt("litsTotales", v, line)
		}},
	{"litsOccupees", []string{"litsOccupees", "litsoccupees", "lits_occupees"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.LitsOccupees = l.coerceInt("litsOccupees", v, line)
		}},
	{"litsDisponibles", []string{"litsDisponibles", "litsdisponibles", "lits_disponibles"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.LitsDisponibles = l.coerceInt("litsDisponibles", v, line)
		}},
	{"specialitesPrincipales", []string{"Specialites Principales", "specialites", "specialites_principales"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.SpecialitesPrincipales = splitSpecialites(v)
		}},
	{"latitude", []string{"latitude", "lat"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.Latitude = l.coerceFloat("latitude", v, line)
		}},
	{"longitude", []string{"longitude", "long", "lon"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.Longitude = l.coerceFloat("longitude", v, line)
		}},
	{"urgenceOuvert", []string{"urgence_ouvert", "urgenceouvert", "urgence"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.UrgenceOuvert = coerceBool(v)
		}},
	{"tempsAttenteUrgence", []string{"temps_attente_urgence", "tempsattente", "temps_attente"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			// exported as a double by some sources ("61.0"); keep the
			// integer part in minutes
			if f := l.coerceFloat("tempsAttenteUrgence", v, line); f != nil {
				minutes := int(*f)
				h.TempsAttenteUrgence = &minutes
			}
		}},
	{"niveauSurcharge", []string{"niveau_surcharge", "niveausurcharge", "surcharge"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) { h.NiveauSurcharge = &v }},
	{"nbMedecinsDisponibles", []string{"nb_medecins_disponibles", "nbmedecins"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.NbMedecinsDisponibles = l.coerceInt("nbMedecinsDisponibles", v, line)
		}},
	{"nbInfirmiersDisponibles", []string{"nb_infirmiers_disponibles", "nbinfirmiers"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.NbInfirmiersDisponibles = l.coerceInt("nbInfirmiersDisponibles", v, line)
		}},
	{"nbAmbulancesDisponibles", []string{"nb_ambulances_disponibles", "nbambulances"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.NbAmbulancesDisponibles = l.coerceInt("nbAmbulancesDisponibles", v, line)
		}},
	{"respirateursDisponibles", []string{"respirateurs_disponibles", "respirateurs"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.RespirateursDisponibles = l.coerceInt("respirateursDisponibles", v, line)
		}},
	{"blocOperatoireDisponible", []string{"bloc_operatoire_disponible", "blocoperatoire", "bloc"},
		func(l *CsvLoaderService, h *models.Hospital, v string, line int) {
			h.BlocOperatoireDisponible = coerceBool(v)
		}},
}

// Load reads the configured CSV file and bulk-inserts every valid row.
// Problems never abort startup: a missing file, a bad row or a failed
// batch insert are logged and the service comes up with whatever the
// store already holds.
func (s *CsvLoaderService) Load() {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		s.logger.Error("CSV file not found, skipping ingestion",
			zap.String("path", s.filePath), zap.Error(err))
		return
	}

	content := string(raw)
	if strings.HasPrefix(content, "\uFEFF") {
		s.logger.Info("BOM detected in CSV file, stripping it")
		content = strings.TrimPrefix(content, "\uFEFF")
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		s.logger.Error("Failed to read CSV header row", zap.Error(err))
		return
	}

	headers := make([]string, len(headerRow))
	for i, raw := range headerRow {
		headers[i] = cleanHeader(raw)
	}
	s.logger.Info("CSV headers detected", zap.Strings("headers", headers))

	var hospitals []models.Hospital
	line := 0
	successCount := 0
	errorCount := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			s.logger.Warn("Skipping malformed CSV record",
				zap.Int("line", line), zap.Error(err))
			errorCount++
			continue
		}

		hospital := s.mapRecord(headers, record, line)

		if strings.TrimSpace(hospital.NomHopital) == "" {
			s.logger.Warn("Skipping row with blank hospital name", zap.Int("line", line))
			errorCount++
			continue
		}

		// Fill availability from the operands when the CSV left it out;
		// a supplied value is kept here and reconciled at insert.
		if hospital.LitsDisponibles == nil {
			hospital.DeriveLitsDisponibles()
		}

		hospitals = append(hospitals, *hospital)
		successCount++
	}

	if len(hospitals) == 0 {
		s.logger.Warn("No hospitals loaded from CSV",
			zap.Int("success", successCount), zap.Int("errors", errorCount))
		return
	}

	if err := s.store.CreateBatch(hospitals); err != nil {
		s.logger.Error("Failed to save hospital batch", zap.Error(err))
		return
	}

	s.logger.Info("CSV ingestion complete",
		zap.Int("inserted", len(hospitals)),
		zap.Int("success", successCount),
		zap.Int("errors", errorCount))

	if count, err := s.store.Count(); err == nil {
		s.logger.Info("Hospitals in store", zap.Int64("count", count))
	}
}

// mapRecord builds a Hospital from one CSV record via the alias table.
func (s *CsvLoaderService) mapRecord(headers, record []string, line int) *models.Hospital {
	values := make(map[string]string, len(headers))
	lowered := make(map[string]string, len(headers))
	for i, header := range headers {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		values[header] = value
		lowered[strings.ToLower(header)] = value
	}

	hospital := &models.Hospital{}
	for _, spec := range hospitalFields {
		value, ok := lookupValue(values, lowered, spec.aliases)
		if !ok {
			continue
		}
		spec.assign(s, hospital, value, line)
	}
	return hospital
}

// lookupValue returns the first non-blank cell reachable through the alias
// list: exact normalized header first, then the alias trimmed, then
// case-insensitively.
func lookupValue(values, lowered map[string]string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := values[alias]; ok && v != "" {
			return v, true
		}
		if trimmed := strings.TrimSpace(alias); trimmed != alias {
			if v, ok := values[trimmed]; ok && v != "" {
				return v, true
			}
		}
		if v, ok := lowered[strings.ToLower(alias)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// cleanHeader normalizes a raw CSV header: the BOM and zero-width spaces
// are removed, outer whitespace is trimmed and inner runs collapse to a
// single space. Idempotent.
func cleanHeader(header string) string {
	cleaned := strings.ReplaceAll(header, "\uFEFF", "")
	cleaned = strings.ReplaceAll(cleaned, "\u200B", "")
	cleaned = whitespaceRunRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func (s *CsvLoaderService) coerceInt(field, value string, line int) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		s.logger.Warn("Non-numeric value, field set to null",
			zap.Int("line", line), zap.String("field", field), zap.String("value", value))
		return nil
	}
	return &n
}

func (s *CsvLoaderService) coerceFloat(field, value string, line int) *float64 {
	// European exports use a decimal comma
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		s.logger.Warn("Non-numeric value, field set to null",
			zap.Int("line", line), zap.String("field", field), zap.String("value", value))
		return nil
	}
	return &f
}

// coerceBool understands French and English synonyms. Anything outside the
// two sets maps to null rather than false.
func coerceBool(value string) *bool {
	t := true
	f := false
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "vrai", "1", "oui", "yes":
		return &t
	case "false", "faux", "0", "non", "no":
		return &f
	}
	return nil
}

// splitSpecialites splits a multi-valued cell on commas. Trailing empties
// from a dangling separator are dropped.
func splitSpecialites(value string) []string {
	parts := specialiteListRe.Split(value, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
