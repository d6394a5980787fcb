package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/canteen/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountService defines the administrative account operations.
type AccountService interface {
	List(ctx context.Context) ([]models.Account, error)
	Get(ctx context.Context, username string) (models.Account, error)
	Create(ctx context.Context, req models.NewAccount) (models.Account, error)
	Delete(ctx context.Context, username string) error
	SetName(ctx context.Context, username, name string) error
	SetPassword(ctx context.Context, username, password string) error
	SetPermission(ctx context.Context, username string, level models.PermissionLevel) error
	AddCredit(ctx context.Context, username string, amount int64) (int64, error)
}

// AccountHandler serves the staff and administrator account endpoints.
type AccountHandler struct {
	AccountService AccountService
	Log            *zap.Logger
}

// CreditResponse reports a balance after a credit change.
type CreditResponse struct {
	Username string `json:"username"`
	Credit   int64  `json:"credit"`
}

// List returns all accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.AccountService.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Get returns the account named in the path.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.AccountService.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Create adds a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewAccount
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	account, err := h.AccountService.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Log.Info("account created", zap.String("username", account.Username), zap.Stringer("level", account.PermissionLevel))
	writeJSON(w, http.StatusCreated, account)
}

// Delete removes the account named in the path.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.AccountService.Delete(r.Context(), username); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Log.Info("account deleted", zap.String("username", username))
	w.WriteHeader(http.StatusNoContent)
}

// SetName changes another account's display name.
func (h *AccountHandler) SetName(w http.ResponseWriter, r *http.Request) {
	var req models.NameChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	h.respond(w, h.AccountService.SetName(r.Context(), req.Username, req.Name))
}

// SetPassword replaces another account's password.
func (h *AccountHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordSetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	h.respond(w, h.AccountService.SetPassword(r.Context(), req.Username, req.Password))
}

// SetPermission changes another account's tier.
func (h *AccountHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	var req models.PermissionChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	if err := h.AccountService.SetPermission(r.Context(), req.Username, req.PermissionLevel); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Log.Info("permission changed", zap.String("username", req.Username), zap.Stringer("level", req.PermissionLevel))
	w.WriteHeader(http.StatusNoContent)
}

// AddCredit adjusts an account's balance.
func (h *AccountHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	var req models.AddCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	credit, err := h.AccountService.AddCredit(r.Context(), req.Username, req.Amount)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, CreditResponse{Username: req.Username, Credit: credit})
}

func (h *AccountHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
