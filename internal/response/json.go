package response

import (
	"encoding/json"
	"net/http"

	"finfolio-backend/internal/apperrors"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Meta    Meta        `json:"meta"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Meta struct {
	Success bool `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Envelope{Meta: Meta{Success: true}, Message: message, Data: data})
}

func WriteErr(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Meta: Meta{Success: false}, Message: message})
}

// WriteError maps an error to its HTTP status. Only the generic message goes
// to the wire; internal reasons stay in logs.
func WriteError(w http.ResponseWriter, err error) {
	if e := apperrors.As(err); e != nil {
		WriteErr(w, e.HTTPStatus(), e.Message)
		return
	}
	WriteErr(w, http.StatusInternalServerError, "Internal server error")
}
