package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/attendance"
)

// Stats is the admin dashboard summary for one organization.
type Stats struct {
	ActiveUsers     int     `json:"activeUsers"`
	Admins          int     `json:"admins"`
	Employees       int     `json:"employees"`
	TodayCheckedIn  int     `json:"todayCheckedIn"`
	TodayCheckedOut int     `json:"todayCheckedOut"`
	TodayPending    int     `json:"todayPending"`
	WeekRecords     int     `json:"weekRecords"`
	MonthRecords    int     `json:"monthRecords"`
	MonthAvgHours   float64 `json:"monthAvgHours"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Stats(ctx context.Context, orgID string, now time.Time) (Stats, error) {
	var st Stats

	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE status = 'active'),
           COUNT(1) FILTER (WHERE role = 'admin'),
           COUNT(1) FILTER (WHERE role = 'employee')
    FROM users
    WHERE organization_id = $1
  `, orgID).Scan(&st.ActiveUsers, &st.Admins, &st.Employees)
	if err != nil {
		return Stats{}, err
	}

	today := attendance.DayOf(now)
	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE check_in_time IS NOT NULL),
           COUNT(1) FILTER (WHERE check_out_time IS NOT NULL)
    FROM attendance
    WHERE organization_id = $1 AND date = $2
  `, orgID, today).Scan(&st.TodayCheckedIn, &st.TodayCheckedOut)
	if err != nil {
		return Stats{}, err
	}
	st.TodayPending = st.ActiveUsers - st.TodayCheckedIn
	if st.TodayPending < 0 {
		st.TodayPending = 0
	}

	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE date >= $2),
           COUNT(1) FILTER (WHERE date >= $3),
           COALESCE(AVG(total_hours) FILTER (WHERE date >= $3 AND total_hours IS NOT NULL), 0)
    FROM attendance
    WHERE organization_id = $1 AND date <= $4
  `, orgID, weekStart, monthStart, today).Scan(&st.WeekRecords, &st.MonthRecords, &st.MonthAvgHours)
	if err != nil {
		return Stats{}, err
	}

	return st, nil
}

type Service struct {
	store      *Store
	attendance *attendance.Store
}

func NewService(store *Store, attendanceStore *attendance.Store) *Service {
	return &Service{store: store, attendance: attendanceStore}
}

func (s *Service) Stats(ctx context.Context, orgID string) (Stats, error) {
	return s.store.Stats(ctx, orgID, time.Now())
}

// RecentActivity returns the latest attendance records for the dashboard
// feed.
func (s *Service) RecentActivity(ctx context.Context, orgID string, limit int) ([]attendance.RecordRow, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.attendance.ListRecords(ctx, orgID, attendance.ListFilter{Limit: limit})
}
