package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/Adilet2201/giftcircle/pkg/logger"
)

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

// respondError converts a service error into the {"message": ...} body
// the API uses everywhere. Untyped errors become a generic 500 and are
// logged server-side only.
func respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Error("Unexpected error")
	}
	respondJSON(w, status, map[string]string{"message": apperrors.PublicMessage(err)})
}

// respondMessage writes a bare {"message": ...} success body.
func respondMessage(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": msg})
}
