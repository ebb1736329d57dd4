package org

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
	"hrms/internal/platform/email"
)

type Service struct {
	store  *Store
	cfg    config.Config
	mailer email.Mailer
}

func NewService(store *Store, cfg config.Config, mailer email.Mailer) *Service {
	return &Service{store: store, cfg: cfg, mailer: mailer}
}

// Signup is the payload of a company registration request.
type Signup struct {
	CompanyName string
	FirstName   string
	LastName    string
	Email       string
	Password    string
}

func (s Signup) validate() error {
	if strings.TrimSpace(s.CompanyName) == "" {
		return fmt.Errorf("company name is required")
	}
	if strings.TrimSpace(s.FirstName) == "" || strings.TrimSpace(s.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if !strings.Contains(s.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(s.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// Register starts a signup: the details are parked in a pending registration
// and a verification code is emailed. Nothing is created until the code is
// confirmed.
func (s *Service) Register(ctx context.Context, in Signup) error {
	if err := in.validate(); err != nil {
		return err
	}

	taken, err := s.store.EmailInUse(ctx, in.Email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailInUse
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	otp, err := generateOTP()
	if err != nil {
		return err
	}

	reg := &Registration{
		CompanyName:  strings.TrimSpace(in.CompanyName),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		OTPHash:      auth.HashToken(otp),
		ExpiresAt:    time.Now().Add(s.cfg.OTPTTL),
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour verification code is %s.\r\nIt expires in %s.\r\n",
		reg.FirstName, otp, s.cfg.OTPTTL,
	)
	if err := s.mailer.Send(ctx, s.cfg.EmailFrom, reg.Email, "Verify your email", body); err != nil {
		slog.Warn("verification email failed", "email", reg.Email, "err", err)
	}
	return nil
}

// VerifyOTP confirms a pending registration and creates the organization with
// its first admin. It returns the new organization and admin user IDs.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, otp string) (string, string, error) {
	reg, err := s.store.FindRegistration(ctx, emailAddr, auth.HashToken(otp))
	if err != nil {
		return "", "", err
	}
	return s.store.Promote(ctx, reg, s.cfg.DefaultOfficeRadius)
}

func (s *Service) EmailAvailable(ctx context.Context, emailAddr string) (bool, error) {
	taken, err := s.store.EmailInUse(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *Service) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	return s.store.Get(ctx, orgID)
}

// CompanyProfile is the mutable portion of an organization, including the
// office geofence.
type CompanyProfile struct {
	Name            string
	Address         string
	OfficeLatitude  float64
	OfficeLongitude float64
	OfficeRadius    float64
}

func (s *Service) UpdateOrganization(ctx context.Context, orgID string, in CompanyProfile) (*Organization, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("company name is required")
	}
	if in.OfficeLatitude < -90 || in.OfficeLatitude > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90")
	}
	if in.OfficeLongitude < -180 || in.OfficeLongitude > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180")
	}
	if in.OfficeRadius < 0 {
		return nil, fmt.Errorf("radius must not be negative")
	}

	current, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Address = strings.TrimSpace(in.Address)
	current.OfficeLatitude = in.OfficeLatitude
	current.OfficeLongitude = in.OfficeLongitude
	current.OfficeRadius = in.OfficeRadius
	if err := s.store.Update(ctx, orgID, *current); err != nil {
		return nil, err
	}
	return current, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
