package scoring

import (
	"strconv"
	"strings"

	"github.com/riskwatch/platform/pkg/common/models"
)

// PatientID resolves the record id from patient_id, falling back to id.
func PatientID(rec models.PatientRecord) (string, bool) {
	for _, key := range []string{models.FieldPatientID, models.FieldID} {
		if id := idString(rec[key]); id != "" {
			return id, true
		}
	}
	return "", false
}

func idString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if _, ok := finite(v); !ok {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Normalize maps a raw record onto a NormalizedPatient. It returns false only
// when the record has no usable id; unparsable vitals set HasInvalid instead.
func Normalize(rec models.PatientRecord) (models.NormalizedPatient, bool) {
	id, ok := PatientID(rec)
	if !ok {
		return models.NormalizedPatient{}, false
	}

	patient := models.NormalizedPatient{ID: id}

	if bp, ok := ParseBloodPressure(rec[models.FieldBloodPressure]); ok {
		patient.BloodPressureScore = BloodPressureScore(bp.Systolic, bp.Diastolic)
	} else {
		patient.HasInvalid = true
	}

	if temp, ok := ParseTemperature(rec[models.FieldTemperature]); ok {
		patient.Temperature = &temp
		patient.TemperatureScore = TemperatureScore(temp)
	} else {
		patient.HasInvalid = true
	}

	if age, ok := ParseAge(rec[models.FieldAge]); ok {
		patient.AgeScore = AgeScore(age)
	} else {
		patient.HasInvalid = true
	}

	patient.Total = patient.BloodPressureScore + patient.TemperatureScore + patient.AgeScore
	return patient, true
}

// Classify scores every record and builds the alert sets. Records without an id
// are dropped; for duplicate ids only the first occurrence counts.
func Classify(records []models.PatientRecord) models.AlertSets {
	sets := models.AlertSets{
		HighRisk:          []string{},
		Fever:             []string{},
		DataQualityIssues: []string{},
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		patient, ok := Normalize(rec)
		if !ok {
			continue
		}
		if _, dup := seen[patient.ID]; dup {
			continue
		}
		seen[patient.ID] = struct{}{}

		if patient.Total >= HighRiskTotal {
			sets.HighRisk = append(sets.HighRisk, patient.ID)
		}
		if patient.Temperature != nil && *patient.Temperature >= FeverThreshold {
			sets.Fever = append(sets.Fever, patient.ID)
		}
		if patient.HasInvalid {
			sets.DataQualityIssues = append(sets.DataQualityIssues, patient.ID)
		}
	}

	sets.TotalPatientsSeen = len(seen)
	return sets
}
