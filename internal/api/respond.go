package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/services"
	"github.com/soaringjerry/Sanctuary/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}

var statusByCode = map[services.ErrorCode]int{
	services.ErrorInvalid:         http.StatusBadRequest,
	services.ErrorUnauthorized:    http.StatusUnauthorized,
	services.ErrorForbidden:       http.StatusForbidden,
	services.ErrorNotFound:        http.StatusNotFound,
	services.ErrorConflict:        http.StatusConflict,
	services.ErrorTooManyRequests: http.StatusTooManyRequests,
	services.ErrorBadGateway:      http.StatusBadGateway,
}

// writeServiceError maps a service error code to its HTTP status. Anything
// else is logged and reported as an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		if status, ok := statusByCode[se.Code]; ok {
			writeErrorBody(w, status, errorResponse{Error: string(se.Code), Message: se.Message})
			return
		}
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeErrorBody(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"})
}

// decodeJSON reads a JSON body into dst and runs the struct validator. It
// writes the 400 response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body required"
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "request body too large"
		}
		writeErrorBody(w, http.StatusBadRequest, errorResponse{Error: string(services.ErrorInvalid), Message: msg})
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		writeErrorBody(w, http.StatusBadRequest, errorResponse{
			Error:   string(services.ErrorInvalid),
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
		return false
	}
	return true
}
