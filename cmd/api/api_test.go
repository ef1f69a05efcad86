package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/trade-account/internal/config"
)

const testUserID = "11111111-1111-1111-1111-111111111111"

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret-for-integration",
		JWTExpireHours: 24,
	}
}

func userRows(hash []byte, balance float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "balance", "created_at"}).
		AddRow(testUserID, "alice", "a@x.com", hash, balance, time.Now())
}

// TestAPI_RegisterLoginBalanceFlow is an integration test: it builds the full
// router with a sqlmock-backed DB, registers and logs in, then reads and
// adjusts the balance using the issued JWT.
func TestAPI_RegisterLoginBalanceFlow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	// Register: email and username free, then insert.
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs("a@x.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs("alice").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "a@x.com", sqlmock.AnyArg(), 10000.00).
		WillReturnRows(userRows(hash, 10000.00))

	// Login: GetByEmail("a@x.com")
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(hash, 10000.00))

	// GET /api/user/balance: GetByID
	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs(testUserID).
		WillReturnRows(userRows(hash, 10000.00))

	// POST /api/user/update-balance: atomic adjustment
	mock.ExpectQuery(`UPDATE users\s+SET balance = balance \+ \$1`).
		WithArgs(250.50, testUserID).
		WillReturnRows(userRows(hash, 10250.50))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	// 1) Register
	registerBody, _ := json.Marshal(map[string]string{"username": "alice", "email": "a@x.com", "password": "pw"})
	registerResp, err := http.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewReader(registerBody))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer registerResp.Body.Close()
	if registerResp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: got %d, want 201", registerResp.StatusCode)
	}

	// 2) Login
	loginBody, _ := json.Marshal(map[string]string{"email": "a@x.com", "password": "pw"})
	loginResp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Token string `json:"token"`
		User  struct {
			Balance float64 `json:"balance"`
		} `json:"user"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	if loginOut.User.Balance != 10000.00 {
		t.Errorf("starting balance: got %v, want 10000.00", loginOut.User.Balance)
	}

	// 3) GET balance with Bearer token
	req, _ := http.NewRequest("GET", srv.URL+"/api/user/balance", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	balanceResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("balance request: %v", err)
	}
	defer balanceResp.Body.Close()
	if balanceResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/user/balance status: got %d, want 200", balanceResp.StatusCode)
	}

	// 4) Adjust balance
	updateBody := []byte(`{"amount": 250.50}`)
	req, _ = http.NewRequest("POST", srv.URL+"/api/user/update-balance", bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	updateResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("update request: %v", err)
	}
	defer updateResp.Body.Close()
	if updateResp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/user/update-balance status: got %d, want 200", updateResp.StatusCode)
	}
	var updateOut struct {
		Balance float64 `json:"balance"`
	}
	if err := json.NewDecoder(updateResp.Body).Decode(&updateOut); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updateOut.Balance != 10250.50 {
		t.Errorf("new balance: got %v, want 10250.50", updateOut.Balance)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_AuthRequired checks that account routes reject requests without a token
// before any business logic runs.
func TestAPI_AuthRequired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	for _, path := range []string{"/api/user/profile", "/api/user/balance"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s status: got %d, want 401", path, resp.StatusCode)
		}
	}

	// No store calls may have happened.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/health status: got %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if out["status"] != "healthy" {
		t.Errorf("health status: got %q, want healthy", out["status"])
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
