package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, sub string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// protected wraps a handler that records the resolved account id.
func protected(gotID *string) http.Handler {
	return JWTMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetUserID(r.Context()); ok {
			*gotID = id
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	var gotID string
	h := protected(&gotID)

	req := httptest.NewRequest("GET", "/api/user/balance", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", time.Hour))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if gotID != "user-42" {
		t.Errorf("resolved id: got %q, want %q", gotID, "user-42")
	}
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed token", "Bearer not.a.token"},
		{"expired token", "Bearer " + mustSign(jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)},
		{"wrong key", "Bearer " + mustSign(jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix()}, []byte("other-secret"))},
		{"no subject", "Bearer " + mustSign(jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			h := protected(&gotID)

			req := httptest.NewRequest("GET", "/api/user/balance", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			if gotID != "" {
				t.Errorf("handler ran with id %q despite invalid token", gotID)
			}
		})
	}
}

// Unsigned ("none" algorithm) tokens must never pass even though they parse.
func TestJWTMiddleware_NoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var gotID string
	h := protected(&gotID)

	req := httptest.NewRequest("GET", "/api/user/balance", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func mustSign(claims jwt.MapClaims, secret []byte) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}
	return signed
}
