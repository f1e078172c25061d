package common

import (
	"encoding/json"
	"net/http"

	"versions/relay/internal/logging"
	"versions/relay/internal/models/dtos"
)

// RespondSuccess sends a {success:true, data} envelope.
func RespondSuccess[T any](w http.ResponseWriter, data T, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	writeJSON(w, code, dtos.SuccessEnvelope(data))
}

// RespondError sends a {success:false, error} envelope.
func RespondError(w http.ResponseWriter, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	writeJSON(w, code, dtos.ErrorEnvelope[any](msg))
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
