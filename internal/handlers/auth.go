package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/trade-account/internal/metrics"
	"github.com/crucial707/trade-account/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users    *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

// ==========================
// Register (username + email + password, bcrypt hash, starting balance)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.Email == "" {
		fields["email"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	// Pre-check both uniqueness constraints so the client gets told which
	// field clashed. The unique indexes remain the final authority below.
	if _, err := h.Users.GetByEmail(r.Context(), input.Email); err == nil {
		JSONError(w, "email already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		slog.Error("register: email lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if _, err := h.Users.GetByUsername(r.Context(), input.Username); err == nil {
		JSONError(w, "username already taken", http.StatusConflict)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		slog.Error("register: username lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	// bcrypt salts per call, so equal passwords never share a stored hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("register: hash password failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Username, input.Email, hash)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			JSONError(w, "email already registered", http.StatusConflict)
		case errors.Is(err, repo.ErrDuplicateUsername):
			JSONError(w, "username already taken", http.StatusConflict)
		default:
			slog.Error("register: create user failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	metrics.IncRegistrations()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User registered successfully",
		"id":      user.ID,
	})
}

// ==========================
// Login (email + password, verified against bcrypt hash, issues JWT)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Email == "" {
		fields["email"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.IncLogins("failure")
			JSONError(w, ErrMessageInvalidCredentials, http.StatusUnauthorized)
			return
		}
		slog.Error("login: email lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(input.Password)); err != nil {
		metrics.IncLogins("failure")
		JSONError(w, ErrMessageInvalidCredentials, http.StatusUnauthorized)
		return
	}

	// Create JWT token: subject is the account id, expiry is a fixed window
	// from issuance. Self-contained, so resolving identity later needs no
	// store lookup.
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(h.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		slog.Error("login: sign token failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("success")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Login successful",
		"token":   signed,
		"user":    user,
	})
}
