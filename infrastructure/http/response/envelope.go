package response

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerr "github.com/complyance/governance/domain/error"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	write(w, statusCode, Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func write(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, false, message, nil)
}

// FromError writes err with the status its catalog kind maps to. Errors
// outside the catalog become a generic 500 without leaking their text.
func FromError(w http.ResponseWriter, err error) {
	var appErr *domainerr.AppError
	if !errors.As(err, &appErr) {
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := appErr.Message
	if appErr.Kind != domainerr.KindDatabase && appErr.Kind != domainerr.KindInternal && appErr.Details != "" {
		message += ": " + appErr.Details
	}
	write(w, domainerr.GetHTTPStatusCode(appErr), Envelope{
		Status:  false,
		Message: message,
		Code:    string(appErr.Code),
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
