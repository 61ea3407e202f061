package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/gateway/middleware"
)

type AssessmentsHandler struct {
	service *assessment.Service
}

func NewAssessmentsHandler(service *assessment.Service) *AssessmentsHandler {
	return &AssessmentsHandler{service: service}
}

func (h *AssessmentsHandler) Register(r *mux.Router) {
	r.HandleFunc("/assessments", h.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/assessments", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/assessments/latest", h.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/assessments/{id}", h.handleGet).Methods(http.MethodGet)
}

func (h *AssessmentsHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req assessment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid assessment request"})
		return
	}
	req.Limit = intParam(r, "limit", req.Limit)
	req.MaxPages = intParam(r, "maxPages", req.MaxPages)
	if r.URL.Query().Get("submit") == "true" {
		req.Submit = true
	}
	if req.RequestedBy == "" {
		req.RequestedBy = middleware.RequestID(r.Context())
	}

	run, err := h.service.Run(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).WithField("run_id", run.ID).Error("assessment run failed")
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Run: run})
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (h *AssessmentsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.Recent(r.Context(), intParam(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": runs, "count": len(runs)})
}

func (h *AssessmentsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *AssessmentsHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
