package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/crucial707/trade-account/internal/models"
)

// Sentinel errors returned by UserRepo. Callers match with errors.Is and map
// them to HTTP statuses; anything else is a store failure.
var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
// Create inserts a new account with the default starting balance. The id is
// generated here so it is opaque to callers and never reused. Unique indexes
// on email and username are the final authority; violations come back as
// ErrDuplicateEmail / ErrDuplicateUsername.
func (r *UserRepo) Create(ctx context.Context, username, email string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, balance, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), username, email, passwordHash, models.DefaultBalance).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Balance, &user.CreatedAt)

	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// ==========================
// Get By Email
// ==========================
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, balance, created_at
		FROM users
		WHERE ` + column + ` = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Balance, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Adjust Balance
// ==========================
// AdjustBalance applies balance += delta as a single UPDATE so concurrent
// adjustments on the same row serialize inside the database and none is
// lost. The balance is never overwritten wholesale and may go negative.
func (r *UserRepo) AdjustBalance(ctx context.Context, id string, delta float64) (*models.User, error) {
	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE id = $2
		RETURNING id, username, email, password_hash, balance, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, delta, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Balance, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Account Stats
// ==========================
// Stats returns the number of accounts and the sum of all balances, used by
// the background stats refresher to populate gauges.
func (r *UserRepo) Stats(ctx context.Context) (count int, totalBalance float64, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM users`).
		Scan(&count, &totalBalance)
	return count, totalBalance, err
}

// mapUniqueViolation translates a Postgres unique_violation (23505) into the
// matching sentinel based on which index rejected the row.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "email") {
			return ErrDuplicateEmail
		}
		if strings.Contains(pqErr.Constraint, "username") {
			return ErrDuplicateUsername
		}
	}
	return err
}
