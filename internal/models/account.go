package models

import (
	"time"

	"github.com/google/uuid"
)

// Account type codes
const (
	AccountTypeUser  = "USER"
	AccountTypeAdmin = "ADMIN"
)

// Account represents an account record in the database.
// The password hash never leaves the service in JSON form.
type Account struct {
	AccountID      uuid.UUID `json:"id" db:"account_id"`                  // Primary key
	Username       string    `json:"username" db:"username"`              // Unique username
	FullName       string    `json:"fullName" db:"full_name"`             // Display name
	Email          string    `json:"email" db:"email"`                    // Unique email
	PasswordHash   string    `json:"-" db:"password_hash"`                // Hashed password
	AccountType    string    `json:"accountType" db:"account_type"`       // USER or ADMIN
	DateRegistered time.Time `json:"dateRegistered" db:"date_registered"` // Registration timestamp
	CreatedAt      time.Time `json:"-" db:"created_at"`                   // Creation timestamp
	UpdatedAt      time.Time `json:"-" db:"updated_at"`                   // Last update timestamp
}
