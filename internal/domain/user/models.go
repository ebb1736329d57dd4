package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrEmployeeNumberTaken = errors.New("employee number already assigned")
	ErrTokenInvalid        = errors.New("token is invalid or expired")
)

type User struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"organizationId"`
	EmployeeNumber string    `json:"employeeNumber"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	Remote         bool      `json:"remote"`
	ShiftID        string    `json:"shiftId,omitempty"`
	MFAEnabled     bool      `json:"mfaEnabled"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Credentials is the authentication slice of a user row. The password hash
// never leaves the auth flow.
type Credentials struct {
	UserID       string
	OrgID        string
	Role         string
	Status       string
	PasswordHash string
	MFAEnabled   bool
}
