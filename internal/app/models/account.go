package models

import (
	"time"
)

// Account is an operator credential pair used solely to obtain session tokens
type Account struct {
	ID           string    `json:"id" db:"id" example:"4b1c2a9e-8d2f-4f57-9a61-2b3c4d5e6f70"`
	Username     string    `json:"username" db:"username" example:"admin"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
