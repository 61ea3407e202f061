package scoring

import (
	"reflect"
	"testing"

	"github.com/riskwatch/platform/pkg/common/models"
)

func record(id string, bp interface{}, temp interface{}, age interface{}) models.PatientRecord {
	return models.PatientRecord{
		"patient_id":     id,
		"blood_pressure": bp,
		"temperature":    temp,
		"age":            age,
	}
}

func TestClassifyBuckets(t *testing.T) {
	records := []models.PatientRecord{
		record("DEMO001", "120/80", 98.6, 45),     // 3+0+1 = 4
		record("DEMO002", "110/70", 100.0, 30),    // 1+1+1 = 3, fever
		record("DEMO003", "bad/data", 98.2, "40"), // invalid bp
		record("DEMO004", "150/95", 101.5, 70),    // 4+2+2 = 8, fever
		record("DEMO005", "115/75", "TEMP_ERROR", nil),
	}

	sets := Classify(records)

	if want := []string{"DEMO001", "DEMO004"}; !reflect.DeepEqual(sets.HighRisk, want) {
		t.Fatalf("high risk = %v, want %v", sets.HighRisk, want)
	}
	if want := []string{"DEMO002", "DEMO004"}; !reflect.DeepEqual(sets.Fever, want) {
		t.Fatalf("fever = %v, want %v", sets.Fever, want)
	}
	if want := []string{"DEMO003", "DEMO005"}; !reflect.DeepEqual(sets.DataQualityIssues, want) {
		t.Fatalf("data quality = %v, want %v", sets.DataQualityIssues, want)
	}
	if sets.TotalPatientsSeen != 5 {
		t.Fatalf("expected 5 patients seen, got %d", sets.TotalPatientsSeen)
	}
}

func TestClassifyDeduplicatesByID(t *testing.T) {
	records := []models.PatientRecord{
		record("DUP", "150/95", 102.0, 70),
		record("DUP", "110/70", 98.0, 30),
	}

	sets := Classify(records)
	if sets.TotalPatientsSeen != 1 {
		t.Fatalf("expected 1 patient seen, got %d", sets.TotalPatientsSeen)
	}
	if len(sets.HighRisk) != 1 || len(sets.Fever) != 1 {
		t.Fatalf("expected first occurrence to win, got %+v", sets)
	}
}

func TestClassifyDropsRecordsWithoutID(t *testing.T) {
	records := []models.PatientRecord{
		{"blood_pressure": "150/95", "temperature": 102.0, "age": 70},
		{"patient_id": "  ", "id": "ALT-1", "blood_pressure": "110/70", "temperature": 98.0, "age": 30},
		{"patient_id": "", "blood_pressure": "110/70"},
	}

	sets := Classify(records)
	if sets.TotalPatientsSeen != 1 {
		t.Fatalf("expected only the fallback id to count, got %d", sets.TotalPatientsSeen)
	}
	if len(sets.HighRisk) != 0 || len(sets.Fever) != 0 || len(sets.DataQualityIssues) != 0 {
		t.Fatalf("unexpected alerts %+v", sets)
	}
}

func TestFeverUsesRawTemperature(t *testing.T) {
	patient, ok := Normalize(record("F1", "110/70", 100.0, 30))
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if patient.TemperatureScore != 1 {
		t.Fatalf("expected low fever score, got %d", patient.TemperatureScore)
	}

	sets := Classify([]models.PatientRecord{record("F1", "110/70", 100.0, 30), record("F2", "110/70", "99.59", 30)})
	if !reflect.DeepEqual(sets.Fever, []string{"F1"}) {
		t.Fatalf("fever = %v", sets.Fever)
	}
}

func TestDataQualityFlagIgnoresValidFields(t *testing.T) {
	sets := Classify([]models.PatientRecord{record("Q1", "bad/data", 98.6, 50)})
	if !reflect.DeepEqual(sets.DataQualityIssues, []string{"Q1"}) {
		t.Fatalf("data quality = %v", sets.DataQualityIssues)
	}

	patient, _ := Normalize(record("Q2", "120/80", 98.6, -1))
	if !patient.HasInvalid || patient.AgeScore != 0 {
		t.Fatalf("expected negative age to be invalid, got %+v", patient)
	}
}

func TestClassifyEmpty(t *testing.T) {
	sets := Classify(nil)
	if sets.TotalPatientsSeen != 0 || sets.HighRisk == nil || sets.Fever == nil || sets.DataQualityIssues == nil {
		t.Fatalf("expected empty non-nil sets, got %+v", sets)
	}
}
