package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/patientapi"
)

type errorResponse struct {
	Error string      `json:"error"`
	Run   interface{} `json:"run,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}

// writeError surfaces err's message as-is with a status derived from its kind.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case patientapi.IsConfigurationError(err):
		return http.StatusInternalServerError
	case patientapi.IsTransferError(err):
		return http.StatusBadGateway
	case errors.Is(err, assessment.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// intParam parses a query parameter; missing, malformed and zero values yield def.
func intParam(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return def
	}
	return n
}
