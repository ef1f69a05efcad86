package models

import "time"

// DefaultBalance is the simulated-money balance every new account starts with.
const DefaultBalance = 10000.00

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}
