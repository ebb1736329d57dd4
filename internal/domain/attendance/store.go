package attendance

import (
	"context"
	"errors"
	"fmt"
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

const recordColumns = `
  id, organization_id, user_id, date,
  check_in_time, check_out_time,
  check_in_lat, check_in_lon, check_in_address,
  check_out_lat, check_out_lon, check_out_address,
  check_in_selfie, check_out_selfie,
  status, attendance_status, total_hours,
  created_at, updated_at`

func (s *Store) FindDayRecord(ctx context.Context, orgID, userID string, day time.Time) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance
    WHERE organization_id = $1 AND user_id = $2 AND date = $3
  `, orgID, userID, day)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, rec *Record) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (
      organization_id, user_id, date,
      check_in_time, check_in_lat, check_in_lon, check_in_address,
      check_in_selfie, status, attendance_status
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id, created_at, updated_at
  `,
		rec.OrgID, rec.UserID, rec.Date,
		rec.CheckInTime, locLat(rec.CheckInLocation), locLon(rec.CheckInLocation), locAddress(rec.CheckInLocation),
		nullIfEmpty(rec.CheckInSelfie), rec.Status, nullIfEmpty(rec.AttendanceStatus),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The unique (organization, user, day) index is the authority for
			// concurrent check-in attempts.
			return ErrAlreadyCheckedIn
		}
		return err
	}
	return nil
}

func (s *Store) Save(ctx context.Context, rec *Record) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET check_in_time = $1, check_out_time = $2,
        check_in_lat = $3, check_in_lon = $4, check_in_address = $5,
        check_out_lat = $6, check_out_lon = $7, check_out_address = $8,
        check_in_selfie = $9, check_out_selfie = $10,
        status = $11, attendance_status = $12, total_hours = $13,
        updated_at = now()
    WHERE organization_id = $14 AND id = $15
  `,
		rec.CheckInTime, rec.CheckOutTime,
		locLat(rec.CheckInLocation), locLon(rec.CheckInLocation), locAddress(rec.CheckInLocation),
		locLat(rec.CheckOutLocation), locLon(rec.CheckOutLocation), locAddress(rec.CheckOutLocation),
		nullIfEmpty(rec.CheckInSelfie), nullIfEmpty(rec.CheckOutSelfie),
		rec.Status, nullIfEmpty(rec.AttendanceStatus), rec.TotalHours,
		rec.OrgID, rec.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter narrows record queries: an empty UserID matches every user and
// zero From/To leave the range unbounded on that side.
type ListFilter struct {
	UserID string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// RecordRow is a record joined with the owning user's identity for listings
// and exports.
type RecordRow struct {
	Record
	FirstName string
	LastName  string
	Email     string
}

func (s *Store) ListRecords(ctx context.Context, orgID string, filter ListFilter) ([]RecordRow, error) {
	var out []RecordRow
	err := s.ForEachRecord(ctx, orgID, filter, func(row RecordRow) error {
		out = append(out, row)
		return nil
	})
	return out, err
}

// ForEachRecord streams matching records ordered by date descending, then
// check-in time descending. Each call re-runs the query, so the sequence is
// restartable.
func (s *Store) ForEachRecord(ctx context.Context, orgID string, filter ListFilter, fn func(RecordRow) error) error {
	query := `
    SELECT a.id, a.organization_id, a.user_id, a.date,
           a.check_in_time, a.check_out_time,
           a.check_in_lat, a.check_in_lon, a.check_in_address,
           a.check_out_lat, a.check_out_lon, a.check_out_address,
           a.check_in_selfie, a.check_out_selfie,
           a.status, a.attendance_status, a.total_hours,
           a.created_at, a.updated_at,
           u.first_name, u.last_name, u.email
    FROM attendance a
    JOIN users u ON a.user_id = u.id
    WHERE a.organization_id = $1
  `
	args := []any{orgID}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND a.user_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND a.date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND a.date <= $%d", len(args))
	}
	query += " ORDER BY a.date DESC, a.check_in_time DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row RecordRow
		var inLat, inLon, outLat, outLon *float64
		var inAddr, outAddr, inSelfie, outSelfie, attStatus *string
		if err := rows.Scan(
			&row.ID, &row.OrgID, &row.UserID, &row.Date,
			&row.CheckInTime, &row.CheckOutTime,
			&inLat, &inLon, &inAddr,
			&outLat, &outLon, &outAddr,
			&inSelfie, &outSelfie,
			&row.Status, &attStatus, &row.TotalHours,
			&row.CreatedAt, &row.UpdatedAt,
			&row.FirstName, &row.LastName, &row.Email,
		); err != nil {
			return err
		}
		row.CheckInLocation = buildLocation(inLat, inLon, inAddr)
		row.CheckOutLocation = buildLocation(outLat, outLon, outAddr)
		row.CheckInSelfie = deref(inSelfie)
		row.CheckOutSelfie = deref(outSelfie)
		row.AttendanceStatus = deref(attStatus)
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var inLat, inLon, outLat, outLon *float64
	var inAddr, outAddr, inSelfie, outSelfie, attStatus *string
	if err := row.Scan(
		&rec.ID, &rec.OrgID, &rec.UserID, &rec.Date,
		&rec.CheckInTime, &rec.CheckOutTime,
		&inLat, &inLon, &inAddr,
		&outLat, &outLon, &outAddr,
		&inSelfie, &outSelfie,
		&rec.Status, &attStatus, &rec.TotalHours,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.CheckInLocation = buildLocation(inLat, inLon, inAddr)
	rec.CheckOutLocation = buildLocation(outLat, outLon, outAddr)
	rec.CheckInSelfie = deref(inSelfie)
	rec.CheckOutSelfie = deref(outSelfie)
	rec.AttendanceStatus = deref(attStatus)
	return rec, nil
}

func buildLocation(lat, lon *float64, addr *string) *Location {
	if lat == nil || lon == nil {
		return nil
	}
	return &Location{Latitude: *lat, Longitude: *lon, Address: deref(addr)}
}

func locLat(loc *Location) *float64 {
	if loc == nil {
		return nil
	}
	return &loc.Latitude
}

func locLon(loc *Location) *float64 {
	if loc == nil {
		return nil
	}
	return &loc.Longitude
}

func locAddress(loc *Location) any {
	if loc == nil || loc.Address == "" {
		return nil
	}
	return loc.Address
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
