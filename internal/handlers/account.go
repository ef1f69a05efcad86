package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/crucial707/trade-account/internal/metrics"
	"github.com/crucial707/trade-account/internal/middleware"
	"github.com/crucial707/trade-account/internal/repo"
)

// ==========================
// Account Handler
// ==========================
// AccountHandler serves the authenticated profile and balance operations.
// The account id always comes from the verified token, never from the request.
type AccountHandler struct {
	Users *repo.UserRepo
}

// ==========================
// Get Profile
// ==========================
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Token can outlive the account it was issued for.
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		slog.Error("profile: lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// ==========================
// Get Balance
// ==========================
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		slog.Error("balance: lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"balance": user.Balance})
}

// ==========================
// Update Balance (signed delta, atomic, no floor)
// ==========================
func (h *AccountHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var input struct {
		Amount interface{} `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Amount == nil {
		JSONValidationError(w, "validation failed", map[string]string{"amount": "required"}, http.StatusBadRequest)
		return
	}

	amount, ok := parseAmount(input.Amount)
	if !ok {
		JSONValidationError(w, "validation failed", map[string]string{"amount": "must be a number"}, http.StatusBadRequest)
		return
	}

	user, err := h.Users.AdjustBalance(r.Context(), id, amount)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		slog.Error("update balance: adjust failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncBalanceUpdates()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Balance updated successfully",
		"balance": user.Balance,
	})
}

// parseAmount accepts a JSON number or a numeric string. Trade results are
// signed: wins credit, losses debit.
func parseAmount(v interface{}) (float64, bool) {
	switch a := v.(type) {
	case float64:
		return a, true
	case string:
		f, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
