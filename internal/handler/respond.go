package handler

import (
	"encoding/json"
	"net/http"

	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/shared/validation"
)

// validationErrorResponse carries field-level validation messages.
type validationErrorResponse struct {
	Message string                 `json:"message"`
	Errors  validation.FieldErrors `json:"errors"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, payload.MessageResponse{Message: message})
}

func respondFieldErrors(w http.ResponseWriter, fields validation.FieldErrors) {
	respondJSON(w, http.StatusBadRequest, validationErrorResponse{
		Message: "validation error",
		Errors:  fields,
	})
}
