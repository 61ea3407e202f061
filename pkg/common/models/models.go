package models

import (
	"time"
)

// PatientRecord is a patient object as returned by the remote API. The shape
// is loose: the id may live under either of two keys and temperature / age may
// arrive as strings or numbers.
type PatientRecord map[string]interface{}

// Keys the remote API uses for patient fields.
const (
	FieldPatientID     = "patient_id"
	FieldID            = "id"
	FieldBloodPressure = "blood_pressure"
	FieldTemperature   = "temperature"
	FieldAge           = "age"
)

// NormalizedPatient is the typed view of a PatientRecord used during
// classification. It is never persisted.
type NormalizedPatient struct {
	ID                 string   `json:"id"`
	BloodPressureScore int      `json:"blood_pressure_score"`
	TemperatureScore   int      `json:"temperature_score"`
	AgeScore           int      `json:"age_score"`
	Total              int      `json:"total"`
	Temperature        *float64 `json:"temperature"`
	HasInvalid         bool     `json:"has_invalid"`
}

// FetchResult is the outcome of a paginated fetch run.
type FetchResult struct {
	Records      []PatientRecord `json:"records"`
	PagesFetched int             `json:"pages_fetched"`
	TotalPages   int             `json:"total_pages"`
	Limit        int             `json:"limit"`
}

// Partial reports whether the run stopped before the remote reported the last page.
func (r *FetchResult) Partial() bool {
	return r.PagesFetched < r.TotalPages
}

// AlertSets holds the three independent classifications of one run. Each list
// is ordered by first appearance and contains no duplicates.
type AlertSets struct {
	HighRisk          []string `json:"high_risk_patients"`
	Fever             []string `json:"fever_patients"`
	DataQualityIssues []string `json:"data_quality_issues"`
	TotalPatientsSeen int      `json:"total_patients_seen"`
}

// SubmitRequest is the body accepted by the remote submit-assessment endpoint.
type SubmitRequest struct {
	HighRiskPatients  []string `json:"high_risk_patients"`
	FeverPatients     []string `json:"fever_patients"`
	DataQualityIssues []string `json:"data_quality_issues"`
}

// SubmitRequest converts alert sets into the submission payload. Nil lists are
// replaced by empty ones so the remote always receives arrays.
func (a AlertSets) SubmitRequest() SubmitRequest {
	return SubmitRequest{
		HighRiskPatients:  nonNil(a.HighRisk),
		FeverPatients:     nonNil(a.Fever),
		DataQualityIssues: nonNil(a.DataQualityIssues),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // assessment.requested, assessment.completed, assessment.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
