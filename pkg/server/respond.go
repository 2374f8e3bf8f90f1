package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/systemmap/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      string(code),
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
