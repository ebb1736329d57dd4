package org

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("organization not found")
	ErrEmailInUse = errors.New("email already in use")
	ErrOTPInvalid = errors.New("verification code is invalid or expired")
)

type Organization struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Address         string    `json:"address,omitempty"`
	OfficeLatitude  float64   `json:"officeLatitude"`
	OfficeLongitude float64   `json:"officeLongitude"`
	OfficeRadius    float64   `json:"officeRadius"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Registration is a pending signup awaiting email verification. The password
// hash is held here until the organization is created.
type Registration struct {
	ID           string
	CompanyName  string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	OTPHash      string
	ExpiresAt    time.Time
}
