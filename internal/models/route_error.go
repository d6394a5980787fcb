package models

import (
	"encoding/json"
	"net/http"
)

// ErrorCode identifies a failure class in RouteError bodies.
type ErrorCode int

const (
	ErrorCodeUnauthorized    ErrorCode = 1
	ErrorCodeNoPermission    ErrorCode = 2
	ErrorCodeBadRequest      ErrorCode = 3
	ErrorCodeNotFound        ErrorCode = 4
	ErrorCodeConflict        ErrorCode = 5
	ErrorCodeTooManyRequests ErrorCode = 6
	ErrorCodeInternal        ErrorCode = 7
)

// RouteError is the JSON body returned with every non-2xx response.
type RouteError struct {
	ID          ErrorCode `json:"id"`
	Description string    `json:"description"`
}

// Write renders e as JSON with the given status.
func (e RouteError) Write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}
