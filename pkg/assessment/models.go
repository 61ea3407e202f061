package assessment

import (
	"time"

	"github.com/riskwatch/platform/pkg/common/models"
	"gorm.io/datatypes"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is the persisted summary of one fetch/classify/submit cycle. Per-patient
// scores are not kept, only the resulting id lists.
type Run struct {
	ID                 string                               `json:"id" gorm:"primaryKey;column:id"`
	Status             string                               `json:"status" gorm:"column:status;index"`
	Limit              int                                  `json:"limit" gorm:"column:page_limit"`
	MaxPages           int                                  `json:"max_pages" gorm:"column:max_pages"`
	PagesFetched       int                                  `json:"pages_fetched" gorm:"column:pages_fetched"`
	TotalPages         int                                  `json:"total_pages" gorm:"column:total_pages"`
	RecordCount        int                                  `json:"record_count" gorm:"column:record_count"`
	TotalPatientsSeen  int                                  `json:"total_patients_seen" gorm:"column:total_patients_seen"`
	Alerts             datatypes.JSONType[models.AlertSets] `json:"alerts" gorm:"column:alerts"`
	Submitted          bool                                 `json:"submitted" gorm:"column:submitted"`
	SubmissionStatus   int                                  `json:"submission_status,omitempty" gorm:"column:submission_status"`
	SubmissionResponse string                               `json:"submission_response,omitempty" gorm:"column:submission_response"`
	RequestedBy        string                               `json:"requested_by,omitempty" gorm:"column:requested_by"`
	Error              string                               `json:"error,omitempty" gorm:"column:error"`
	CreatedAt          time.Time                            `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time                            `json:"updated_at" gorm:"column:updated_at"`
	CompletedAt        *time.Time                           `json:"completed_at,omitempty" gorm:"column:completed_at"`
}

func (Run) TableName() string {
	return "assessment_runs"
}

// AlertSets returns the classification stored on the run.
func (r *Run) AlertSets() models.AlertSets {
	return r.Alerts.Data()
}

// Partial reports whether the fetch stopped at the page ceiling.
func (r *Run) Partial() bool {
	return r.PagesFetched < r.TotalPages
}

// Request parameters for a run.
type Request struct {
	Limit       int    `json:"limit"`
	MaxPages    int    `json:"maxPages"`
	Submit      bool   `json:"submit"`
	RequestedBy string `json:"requested_by,omitempty"`
}
