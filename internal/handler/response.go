package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// fieldErrors collects per-field validation messages, mirroring the
// {field: [messages]} detail shape of the public API.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondDetail renders a business error as {"detail": "..."}.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondValidationError wraps input validation failures in the uniform
// envelope every malformed request gets.
func respondValidationError(w http.ResponseWriter, details fieldErrors) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   "validation failed",
		"details": details,
	})
}

func respondInvalidBody(w http.ResponseWriter) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   "invalid request body",
		"details": map[string]any{},
	})
}
