// Package response writes the JSON envelope every endpoint answers with:
//
//	{"request":"GET /api/v3/foods/food?id=…","status":"OK","data":{…}}
//	{"request":"PUT /api/v2/users/change/pw?u_id=…","status":"ERROR","code":"InvalidCredentialsError","message":"…"}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Envelope is the response body shape.
type Envelope struct {
	Request string `json:"request"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// RequestLine renders "<METHOD> <path>?<query>" for the envelope.
func RequestLine(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Method + " " + r.URL.RequestURI()
}

// Write sends body with the given HTTP status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, r *http.Request, data any) {
	Write(w, http.StatusOK, Envelope{Request: RequestLine(r), Status: StatusOK, Data: data})
}

// Created sends a 201 envelope with data.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	Write(w, http.StatusCreated, Envelope{Request: RequestLine(r), Status: StatusOK, Data: data})
}

// Error sends an error envelope with an explicit status and message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	Write(w, status, Envelope{Request: RequestLine(r), Status: StatusError, Message: message})
}

// Fail maps err through apperr and sends the matching envelope. Server-side
// failures are logged with their cause; the client only sees the message.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	kind := apperr.KindOf(err)

	switch {
	case status >= http.StatusInternalServerError:
		logger.WithCtx(r.Context()).Error("request failed", "code", string(kind), "error", err)
	case status == http.StatusUnauthorized:
		metrics.AuthFailures.WithLabelValues(string(kind)).Inc()
	}

	Write(w, status, Envelope{
		Request: RequestLine(r),
		Status:  StatusError,
		Code:    string(kind),
		Message: apperr.Message(err),
	})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	Write(w, http.StatusBadRequest, Envelope{
		Request: RequestLine(r),
		Status:  StatusError,
		Code:    string(apperr.KindValidation),
		Message: "Validation failed",
		Errors:  errs,
	})
}
