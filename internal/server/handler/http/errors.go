package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/canteen/internal/auth"
	"github.com/atinyakov/canteen/internal/middleware"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/password"
	"github.com/atinyakov/canteen/internal/ratelimit"
	"github.com/atinyakov/canteen/internal/service"
	"go.uber.org/zap"
)

// writeError maps a service error onto a status and RouteError body.
// Authentication failures are never told apart in the response.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		status = http.StatusInternalServerError
		body   = models.RouteError{ID: models.ErrorCodeInternal, Description: "Internal error"}
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		loginFailed(w)
		return
	case auth.IsUnauthenticated(err):
		middleware.Unauthorized(w)
		return
	case errors.Is(err, service.ErrWrongPassword):
		status, body = http.StatusBadRequest, models.RouteError{ID: models.ErrorCodeBadRequest, Description: "Password incorrect"}
	case errors.Is(err, models.ErrInvalidAccount), errors.Is(err, password.ErrPolicy):
		status, body = http.StatusBadRequest, models.RouteError{ID: models.ErrorCodeBadRequest, Description: err.Error()}
	case errors.Is(err, models.ErrAccountNotFound):
		status, body = http.StatusNotFound, models.RouteError{ID: models.ErrorCodeNotFound, Description: "User not found"}
	case errors.Is(err, models.ErrAccountExists):
		status, body = http.StatusConflict, models.RouteError{ID: models.ErrorCodeConflict, Description: "User already exists"}
	case errors.Is(err, models.ErrInsufficientCredit):
		status, body = http.StatusConflict, models.RouteError{ID: models.ErrorCodeConflict, Description: "Insufficient credit"}
	case errors.Is(err, ratelimit.ErrRateLimited):
		status, body = http.StatusTooManyRequests, models.RouteError{ID: models.ErrorCodeTooManyRequests, Description: "Too many failed login attempts"}
	default:
		log.Error("request failed", zap.Error(err))
	}
	body.Write(w, status)
}

// loginFailed answers every rejected login, including missing fields, with
// the same body.
func loginFailed(w http.ResponseWriter) {
	models.RouteError{ID: models.ErrorCodeUnauthorized, Description: "Password or Username incorrect"}.
		Write(w, http.StatusUnauthorized)
}

func badRequest(w http.ResponseWriter, description string) {
	models.RouteError{ID: models.ErrorCodeBadRequest, Description: description}.Write(w, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
