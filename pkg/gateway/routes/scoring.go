package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/riskwatch/platform/pkg/scoring"
)

type ScoringHandler struct{}

func NewScoringHandler() *ScoringHandler {
	return &ScoringHandler{}
}

func (h *ScoringHandler) Register(r *mux.Router) {
	r.HandleFunc("/score", h.handleScore).Methods(http.MethodPost)
	r.HandleFunc("/score", h.handleScoreQuery).Methods(http.MethodGet)
}

func (h *ScoringHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var in scoring.VitalsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vitals payload"})
		return
	}
	writeJSON(w, http.StatusOK, scoring.ScoreVitals(in))
}

func (h *ScoringHandler) handleScoreQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, scoring.ScoreVitals(scoring.VitalsInput{
		Systolic:    q.Get("systolic"),
		Diastolic:   q.Get("diastolic"),
		Temperature: q.Get("temperature"),
		Age:         q.Get("age"),
	}))
}
