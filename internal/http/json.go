package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

var statusByCode = map[apperrors.ErrorCode]int{ //nolint:gochecknoglobals // read-only lookup
	apperrors.ErrCodeValidation:      http.StatusBadRequest,
	apperrors.ErrCodeUnauthorized:    http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:       http.StatusForbidden,
	apperrors.ErrCodeNotFound:        http.StatusNotFound,
	apperrors.ErrCodeConflict:        http.StatusConflict,
	apperrors.ErrCodePaymentDeclined: http.StatusPaymentRequired,
	apperrors.ErrCodeRateLimited:     http.StatusTooManyRequests,
	apperrors.ErrCodeTransport:       http.StatusBadGateway,
	apperrors.ErrCodeReconciliation:  http.StatusBadGateway,
	apperrors.ErrCodeTimeout:         http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:        http.StatusRequestTimeout,
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByCode[apperrors.GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteAppError writes err as {"error": code, "message": msg}. Errors without
// an application code are reported as internal without leaking their text.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	msg := apperrors.UserMessage(err, "Internal server error")
	WriteError(w, ErrorParams{Code: StatusFor(err), ErrCode: string(code), Err: errors.New(msg)})
}
