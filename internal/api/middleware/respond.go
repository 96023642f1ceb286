// internal/api/middleware/respond.go
package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "crm-insights/internal/common/errors"
)

// WriteJSON writes data with status as a JSON body.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": msg} with the status mapped from err's code.
func WriteError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)
	WriteJSON(w, apperrors.HTTPStatus(stdErr.Code), map[string]string{
		"error": apperrors.PublicMessage(stdErr),
	})
}
