package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/model"
	"github.com/safemap/saferoute/internal/network"
	"github.com/safemap/saferoute/internal/proj"
	"github.com/safemap/saferoute/internal/route"
	"github.com/safemap/saferoute/internal/snap"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the core error taxonomy to HTTP statuses. Everything in
// the taxonomy is a recoverable per-request failure; only genuinely
// unexpected errors become 500s.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, proj.ErrOutOfRange),
		errors.Is(err, model.ErrUnknownProfile),
		errors.Is(err, hazard.ErrInvalidObservation),
		errors.Is(err, network.ErrUnknownMode):
		status = http.StatusBadRequest
	case errors.Is(err, route.ErrNoPath),
		errors.Is(err, snap.ErrNoCoverage):
		status = http.StatusNotFound
	case errors.Is(err, network.ErrNoSnapshot):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
