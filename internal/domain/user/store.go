package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `
  id, organization_id,
  COALESCE(employee_number, ''),
  first_name, last_name, email,
  COALESCE(phone, ''),
  role, status, remote,
  COALESCE(shift_id::text, ''),
  mfa_enabled,
  created_at, updated_at`

func (s *Store) Get(ctx context.Context, orgID, userID string) (*User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE organization_id = $1 AND id = $2
  `, orgID, userID)
	return scanUser(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE lower(email) = lower($1)
  `, email)
	return scanUser(row)
}

func (s *Store) CredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	var creds Credentials
	var hash *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, organization_id, role, status, password_hash, mfa_enabled
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&creds.UserID, &creds.OrgID, &creds.Role, &creds.Status, &hash, &creds.MFAEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if hash != nil {
		creds.PasswordHash = *hash
	}
	return &creds, nil
}

func (s *Store) List(ctx context.Context, orgID string, limit, offset int) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE organization_id = $1
    ORDER BY employee_number, last_name, first_name
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.OrgID, &u.EmployeeNumber, &u.FirstName, &u.LastName, &u.Email,
			&u.Phone, &u.Role, &u.Status, &u.Remote, &u.ShiftID, &u.MFAEnabled,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE organization_id = $1
  `, orgID).Scan(&count)
	return count, err
}

// NextEmployeeNumber allocates the next EMP-prefixed number for the
// organization, based on the highest numeric suffix already issued.
func (s *Store) NextEmployeeNumber(ctx context.Context, orgID string) (string, error) {
	var highest int
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(MAX(NULLIF(regexp_replace(employee_number, '\D', '', 'g'), '')::int), 0)
    FROM users
    WHERE organization_id = $1
  `, orgID).Scan(&highest)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP%03d", highest+1), nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (organization_id, employee_number, first_name, last_name, email, phone, role, status, remote, shift_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id, created_at, updated_at
  `,
		u.OrgID, u.EmployeeNumber, u.FirstName, u.LastName, u.Email, nullIfEmpty(u.Phone),
		u.Role, u.Status, u.Remote, nullIfEmpty(u.ShiftID),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uniqueViolation(pgErr)
		}
		return err
	}
	return nil
}

// uniqueViolation distinguishes which unique index on users fired: the email
// index, or the (organization_id, employee_number) index when two concurrent
// creates race the number allocation.
func uniqueViolation(pgErr *pgconn.PgError) error {
	if strings.Contains(pgErr.ConstraintName, "employee_number") {
		return ErrEmployeeNumberTaken
	}
	return ErrEmailTaken
}

func (s *Store) Update(ctx context.Context, orgID, userID string, u User) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET first_name = $1, last_name = $2, phone = $3, role = $4,
        status = $5, remote = $6, updated_at = now()
    WHERE organization_id = $7 AND id = $8
  `, u.FirstName, u.LastName, nullIfEmpty(u.Phone), u.Role, u.Status, u.Remote, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, orgID, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM users
    WHERE organization_id = $1 AND id = $2
  `, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET password_hash = $1, status = 'active', updated_at = now()
    WHERE id = $2
  `, passwordHash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateSetupToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_setup_tokens (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expiresAt)
	return err
}

// ConsumeSetupToken resolves an unexpired, unused token to its user and marks
// it used in the same statement so a token cannot be replayed.
func (s *Store) ConsumeSetupToken(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    UPDATE password_setup_tokens
    SET used_at = now()
    WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
    RETURNING user_id
  `, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) CreateResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_resets (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expiresAt)
	return err
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    UPDATE password_resets
    SET used_at = now()
    WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
    RETURNING user_id
  `, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) MFASecret(ctx context.Context, userID string) ([]byte, error) {
	var secret []byte
	err := s.DB.QueryRow(ctx, `
    SELECT mfa_secret_enc FROM users WHERE id = $1
  `, userID).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return secret, err
}

func (s *Store) SetMFASecret(ctx context.Context, userID string, secret []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET mfa_secret_enc = $1, updated_at = now() WHERE id = $2
  `, secret, userID)
	return err
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	if enabled {
		_, err := s.DB.Exec(ctx, `
      UPDATE users SET mfa_enabled = true, updated_at = now() WHERE id = $1
    `, userID)
		return err
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET mfa_enabled = false, mfa_secret_enc = NULL, updated_at = now() WHERE id = $1
  `, userID)
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.OrgID, &u.EmployeeNumber, &u.FirstName, &u.LastName, &u.Email,
		&u.Phone, &u.Role, &u.Status, &u.Remote, &u.ShiftID, &u.MFAEnabled,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
