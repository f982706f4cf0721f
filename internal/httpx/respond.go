package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope respons seragam untuk semua endpoint synchronous.
type Response struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Response{OK: true, Message: message, StatusCode: code, Data: data})
}

func Fail(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Response{OK: false, Message: message, StatusCode: code})
}
