package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
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

// NewUser is the admin-supplied portion of a user record.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
	Remote    bool
}

func (n NewUser) validate() error {
	if strings.TrimSpace(n.FirstName) == "" || strings.TrimSpace(n.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if !strings.Contains(n.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if n.Role != auth.RoleAdmin && n.Role != auth.RoleEmployee {
		return fmt.Errorf("role must be %q or %q", auth.RoleAdmin, auth.RoleEmployee)
	}
	return nil
}

// CreateUser registers a user in the organization and emails a password setup
// link. The account stays pending until the password is set.
func (s *Service) CreateUser(ctx context.Context, orgID string, in NewUser) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var u *User
	for attempt := 0; ; attempt++ {
		number, err := s.store.NextEmployeeNumber(ctx, orgID)
		if err != nil {
			return nil, err
		}

		u = &User{
			OrgID:          orgID,
			EmployeeNumber: number,
			FirstName:      strings.TrimSpace(in.FirstName),
			LastName:       strings.TrimSpace(in.LastName),
			Email:          strings.ToLower(strings.TrimSpace(in.Email)),
			Phone:          strings.TrimSpace(in.Phone),
			Role:           in.Role,
			Status:         auth.UserStatusInactive,
			Remote:         in.Remote,
		}
		err = s.store.Create(ctx, u)
		if err == nil {
			break
		}
		// Concurrent creates can race the number allocation; reallocate.
		if errors.Is(err, ErrEmployeeNumberTaken) && attempt < 2 {
			continue
		}
		return nil, err
	}

	if err := s.sendSetupLink(ctx, u); err != nil {
		slog.Warn("password setup email failed", "userId", u.ID, "err", err)
	}
	return u, nil
}

// ResendSetupLink issues a fresh setup token for a user who never completed
// onboarding.
func (s *Service) ResendSetupLink(ctx context.Context, orgID, userID string) error {
	u, err := s.store.Get(ctx, orgID, userID)
	if err != nil {
		return err
	}
	return s.sendSetupLink(ctx, u)
}

func (s *Service) sendSetupLink(ctx context.Context, u *User) error {
	token, err := generateToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.cfg.SetupTokenTTL)
	if err := s.store.CreateSetupToken(ctx, u.ID, auth.HashToken(token), expires); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/setup-password?token=%s", s.cfg.AppBaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nAn account has been created for you (employee number %s).\r\nSet your password here: %s\r\n\r\nThe link expires in %s.\r\n",
		u.FirstName, u.EmployeeNumber, link, s.cfg.SetupTokenTTL,
	)
	return s.mailer.Send(ctx, s.cfg.EmailFrom, u.Email, "Set up your account", body)
}

// SetupPassword consumes a setup token and activates the account.
func (s *Service) SetupPassword(ctx context.Context, token, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	userID, err := s.store.ConsumeSetupToken(ctx, auth.HashToken(token))
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.SetPassword(ctx, userID, hash)
}

// RequestPasswordReset issues a reset token when the email is known. Unknown
// emails are ignored so the endpoint does not leak which accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	u, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil
	}
	token, err := generateToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(2 * time.Hour)
	if err := s.store.CreateResetToken(ctx, u.ID, auth.HashToken(token), expires); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.AppBaseURL, token)
	body := fmt.Sprintf("Hi %s,\r\n\r\nReset your password here: %s\r\n\r\nThe link expires in 2 hours.\r\n", u.FirstName, link)
	if err := s.mailer.Send(ctx, s.cfg.EmailFrom, u.Email, "Password reset", body); err != nil {
		slog.Warn("password reset email failed", "userId", u.ID, "err", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	userID, err := s.store.ConsumeResetToken(ctx, auth.HashToken(token))
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.SetPassword(ctx, userID, hash)
}

func (s *Service) GetUser(ctx context.Context, orgID, userID string) (*User, error) {
	return s.store.Get(ctx, orgID, userID)
}

func (s *Service) ListUsers(ctx context.Context, orgID string, limit, offset int) ([]User, int, error) {
	users, err := s.store.List(ctx, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, orgID)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser applies the mutable profile fields. Email and employee number
// are fixed after creation.
func (s *Service) UpdateUser(ctx context.Context, orgID, userID string, in NewUser, status string) (*User, error) {
	current, err := s.store.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := (NewUser{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     current.Email,
		Role:      in.Role,
	}).validate(); err != nil {
		return nil, err
	}
	if status != auth.UserStatusActive && status != auth.UserStatusInactive {
		return nil, fmt.Errorf("status must be %q or %q", auth.UserStatusActive, auth.UserStatusInactive)
	}

	current.FirstName = strings.TrimSpace(in.FirstName)
	current.LastName = strings.TrimSpace(in.LastName)
	current.Phone = strings.TrimSpace(in.Phone)
	current.Role = in.Role
	current.Status = status
	current.Remote = in.Remote
	if err := s.store.Update(ctx, orgID, userID, *current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) DeleteUser(ctx context.Context, orgID, userID string) error {
	return s.store.Delete(ctx, orgID, userID)
}

func generateToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
