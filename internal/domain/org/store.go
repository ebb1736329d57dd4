package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, orgID string) (*Organization, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name, email, COALESCE(address, ''),
           office_latitude, office_longitude, office_radius,
           created_at, updated_at
    FROM organizations
    WHERE id = $1
  `, orgID)

	var org Organization
	err := row.Scan(
		&org.ID, &org.Name, &org.Email, &org.Address,
		&org.OfficeLatitude, &org.OfficeLongitude, &org.OfficeRadius,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *Store) Update(ctx context.Context, orgID string, org Organization) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE organizations
    SET name = $1, address = $2,
        office_latitude = $3, office_longitude = $4, office_radius = $5,
        updated_at = now()
    WHERE id = $6
  `, org.Name, nullIfEmpty(org.Address), org.OfficeLatitude, org.OfficeLongitude, org.OfficeRadius, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailInUse checks registered users and pending signups so an address cannot
// be claimed twice while a verification is outstanding.
func (s *Store) EmailInUse(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT (SELECT COUNT(1) FROM users WHERE lower(email) = lower($1))
         + (SELECT COUNT(1) FROM temp_registrations WHERE lower(email) = lower($1) AND expires_at > now())
  `, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRegistration stores a pending signup, replacing any earlier pending
// row for the same email so only the latest code is valid.
func (s *Store) CreateRegistration(ctx context.Context, reg *Registration) error {
	if _, err := s.DB.Exec(ctx, `
    DELETE FROM temp_registrations WHERE lower(email) = lower($1)
  `, reg.Email); err != nil {
		return err
	}
	return s.DB.QueryRow(ctx, `
    INSERT INTO temp_registrations (company_name, first_name, last_name, email, password_hash, otp_hash, expires_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, reg.CompanyName, reg.FirstName, reg.LastName, reg.Email, reg.PasswordHash, reg.OTPHash, reg.ExpiresAt).Scan(&reg.ID)
}

func (s *Store) FindRegistration(ctx context.Context, email, otpHash string) (*Registration, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, company_name, first_name, last_name, email, password_hash, otp_hash, expires_at
    FROM temp_registrations
    WHERE lower(email) = lower($1) AND otp_hash = $2 AND expires_at > now()
  `, email, otpHash)

	var reg Registration
	err := row.Scan(
		&reg.ID, &reg.CompanyName, &reg.FirstName, &reg.LastName,
		&reg.Email, &reg.PasswordHash, &reg.OTPHash, &reg.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOTPInvalid
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Promote turns a verified registration into an organization with its first
// admin user, in one transaction.
func (s *Store) Promote(ctx context.Context, reg *Registration, officeRadius float64) (string, string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", "", err
	}
	defer tx.Rollback(ctx)

	var orgID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO organizations (name, email, office_latitude, office_longitude, office_radius)
    VALUES ($1, $2, 0, 0, $3)
    RETURNING id
  `, reg.CompanyName, reg.Email, officeRadius).Scan(&orgID); err != nil {
		return "", "", err
	}

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (organization_id, email, password_hash, first_name, last_name, role, status, employee_number, remote)
    VALUES ($1, $2, $3, $4, $5, 'admin', 'active', 'EMP001', false)
    RETURNING id
  `, orgID, reg.Email, reg.PasswordHash, reg.FirstName, reg.LastName).Scan(&userID); err != nil {
		return "", "", err
	}

	if _, err := tx.Exec(ctx, `
    DELETE FROM temp_registrations WHERE id = $1
  `, reg.ID); err != nil {
		return "", "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", err
	}
	return orgID, userID, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
