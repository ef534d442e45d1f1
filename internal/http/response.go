// Package http serves the JSON REST API.
//
// Every response uses the same envelope: {"success": bool, "message":
// string, ...} with payload fields merged in at the top level.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type envelope map[string]any

func respondJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondSuccess(w http.ResponseWriter, status int, message string, data envelope) {
	payload := envelope{"success": true, "message": message}
	for k, v := range data {
		payload[k] = v
	}
	respondJSON(w, status, payload)
}

func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{"success": false, "message": message})
}

// respondError maps domain errors to HTTP statuses. Unrecognized errors
// become opaque 500s; the detail stays in the log.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		respondFailure(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrEmailTaken):
		respondFailure(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		respondFailure(w, http.StatusUnauthorized, err.Error())
	case isValidationError(err):
		respondFailure(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(ctx, "Request failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidInput,
		core.ErrInvalidAmount,
		core.ErrInvalidBudget,
		core.ErrEmptyTitle,
		core.ErrEmptyName,
		core.ErrEmptyEmail,
		core.ErrEmptyPassword,
		core.ErrInvalidType,
		core.ErrUnknownCategory,
		core.ErrInvalidDate,
		services.ErrInvalidFrequency,
		services.ErrInvalidRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
