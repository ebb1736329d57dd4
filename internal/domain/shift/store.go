package shift

import (
	"context"
	"errors"

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

const shiftColumns = `id, name, start_time, end_time, late_time, days, organization_id, created_at, updated_at`

func (s *Store) CountForOrg(ctx context.Context, orgID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM shifts WHERE organization_id = $1", orgID).Scan(&count)
	return count, err
}

func (s *Store) Create(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO shifts (organization_id, name, start_time, end_time, late_time, days)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING `+shiftColumns+`
  `, orgID, sh.Name, sh.StartTime, sh.EndTime, sh.LateTime, sh.Days)
	created, err := scanShift(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Shift{}, ErrNameTaken
		}
		return Shift{}, err
	}
	return created, nil
}

func (s *Store) List(ctx context.Context, orgID string) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+shiftColumns+`
    FROM shifts
    WHERE organization_id = $1
    ORDER BY created_at DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, orgID, shiftID string) (Shift, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+shiftColumns+`
    FROM shifts
    WHERE organization_id = $1 AND id = $2
  `, orgID, shiftID)
	sh, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, ErrNotFound
	}
	return sh, err
}

func (s *Store) Update(ctx context.Context, orgID string, sh Shift) (Shift, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE shifts
    SET name = $1, start_time = $2, end_time = $3, late_time = $4, days = $5, updated_at = now()
    WHERE organization_id = $6 AND id = $7
    RETURNING `+shiftColumns+`
  `, sh.Name, sh.StartTime, sh.EndTime, sh.LateTime, sh.Days, orgID, sh.ID)
	updated, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Shift{}, ErrNameTaken
		}
		return Shift{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, orgID, shiftID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM shifts WHERE organization_id = $1 AND id = $2", orgID, shiftID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AssignedUserCount(ctx context.Context, orgID, shiftID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM users
    WHERE organization_id = $1 AND shift_id = $2
  `, orgID, shiftID).Scan(&count)
	return count, err
}

func (s *Store) SetUserShift(ctx context.Context, orgID, userID string, shiftID any) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET shift_id = $1, updated_at = now()
    WHERE organization_id = $2 AND id = $3
  `, shiftID, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UserShiftRef returns the user's assigned shift id, or "" when unassigned.
func (s *Store) UserShiftRef(ctx context.Context, orgID, userID string) (string, error) {
	var shiftID *string
	err := s.DB.QueryRow(ctx, `
    SELECT shift_id
    FROM users
    WHERE organization_id = $1 AND id = $2
  `, orgID, userID).Scan(&shiftID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if shiftID == nil {
		return "", nil
	}
	return *shiftID, nil
}

func scanShift(row pgx.Row) (Shift, error) {
	var sh Shift
	if err := row.Scan(&sh.ID, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.LateTime, &sh.Days, &sh.OrgID, &sh.CreatedAt, &sh.UpdatedAt); err != nil {
		return Shift{}, err
	}
	return sh, nil
}
