package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
	"github.com/riskwatch/platform/pkg/patientapi"
)

// PatientsHandler exposes the remote patient list and the submission endpoint.
type PatientsHandler struct {
	source          assessment.PatientSource
	defaultLimit    int
	defaultMaxPages int
}

func NewPatientsHandler(source assessment.PatientSource, defaultLimit, defaultMaxPages int) *PatientsHandler {
	if defaultLimit == 0 {
		defaultLimit = 5
	}
	if defaultMaxPages < 1 {
		defaultMaxPages = 10
	}
	return &PatientsHandler{
		source:          source,
		defaultLimit:    patientapi.ClampLimit(defaultLimit),
		defaultMaxPages: defaultMaxPages,
	}
}

func (h *PatientsHandler) Register(r *mux.Router) {
	r.HandleFunc("/patients", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/submit-assessment", h.handleSubmit).Methods(http.MethodPost)
}

type listMeta struct {
	Count        int `json:"count"`
	PagesFetched int `json:"pagesFetched"`
	TotalPages   int `json:"totalPages"`
	Limit        int `json:"limit"`
}

type listResponse struct {
	Data []models.PatientRecord `json:"data"`
	Meta listMeta               `json:"meta"`
}

func (h *PatientsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := patientapi.ClampLimit(intParam(r, "limit", h.defaultLimit))
	maxPages := intParam(r, "maxPages", h.defaultMaxPages)
	if maxPages < 1 {
		maxPages = 1
	}

	result, err := h.source.FetchAllPatients(r.Context(), limit, maxPages)
	if err != nil {
		logger.Log.WithError(err).Error("failed to fetch patients")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: result.Records,
		Meta: listMeta{
			Count:        len(result.Records),
			PagesFetched: result.PagesFetched,
			TotalPages:   result.TotalPages,
			Limit:        result.Limit,
		},
	})
}

func (h *PatientsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req := models.SubmitRequest{
		HighRiskPatients:  idList(payload["high_risk_patients"]),
		FeverPatients:     idList(payload["fever_patients"]),
		DataQualityIssues: idList(payload["data_quality_issues"]),
	}

	resp, err := h.source.SubmitAssessment(r.Context(), req)
	if err != nil {
		var te *patientapi.TransferError
		if resp == nil || !errors.As(err, &te) {
			logger.Log.WithError(err).Error("failed to submit assessment")
			writeError(w, err)
			return
		}
		logger.Log.WithField("status", resp.StatusCode).Warn("assessment rejected by remote")
	}

	passThrough(w, resp)
}

// idList keeps the non-empty trimmed strings of a JSON array; anything else
// becomes an empty list.
func idList(raw interface{}) []string {
	items, ok := raw.([]interface{})
	ids := make([]string, 0, len(items))
	if !ok {
		return ids
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

func passThrough(w http.ResponseWriter, resp *patientapi.SubmitResponse) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Log.WithError(err).Error("failed to write submission response")
	}
}
