package httpapi

import (
	"encoding/json"
	"net/http"

	"hoctap-backend/internal/services"
)

type Envelope struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []services.FieldError `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: true, Message: message})
}

func WriteError(w http.ResponseWriter, status int, message string, fields ...services.FieldError) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, Errors: fields})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if serr, ok := services.AsServiceError(err); ok {
		WriteError(w, serr.Status, serr.Message, serr.Fields...)
		return
	}
	s.Log.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	WriteError(w, http.StatusInternalServerError, services.MsgInternal)
}
