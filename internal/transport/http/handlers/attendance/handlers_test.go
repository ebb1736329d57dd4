package attendancehandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/org"
	"hrms/internal/domain/user"
	"hrms/internal/transport/http/middleware"
)

// fakeReader records the filter it was queried with and yields canned rows.
type fakeReader struct {
	rows       []attendance.RecordRow
	lastFilter attendance.ListFilter
}

func (f *fakeReader) FindDayRecord(ctx context.Context, orgID, userID string, day time.Time) (*attendance.Record, error) {
	return nil, nil
}

func (f *fakeReader) ListRecords(ctx context.Context, orgID string, filter attendance.ListFilter) ([]attendance.RecordRow, error) {
	f.lastFilter = filter
	return f.rows, nil
}

func (f *fakeReader) ForEachRecord(ctx context.Context, orgID string, filter attendance.ListFilter, fn func(attendance.RecordRow) error) error {
	f.lastFilter = filter
	for _, row := range f.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func testRouter(store *fakeReader) http.Handler {
	h := NewHandler(&attendance.Service{}, store, "", 5<<20)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func asUser(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{
		UserID: userID,
		OrgID:  "org1",
		Role:   role,
	}))
}

func sampleRow(userID string) attendance.RecordRow {
	checkIn := time.Date(2026, 8, 24, 9, 15, 0, 0, time.UTC)
	return attendance.RecordRow{
		Record: attendance.Record{
			UserID:           userID,
			Date:             time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			CheckInTime:      &checkIn,
			Status:           attendance.StatusCheckedIn,
			AttendanceStatus: attendance.PunctualityOnTime,
		},
		FirstName: "Amal",
		LastName:  "Perera",
		Email:     "amal@example.com",
	}
}

func TestExportScopedToEmployee(t *testing.T) {
	store := &fakeReader{rows: []attendance.RecordRow{sampleRow("u1")}}
	router := testRouter(store)

	req := asUser(httptest.NewRequest(http.MethodGet, "/attendance/export?userId=u9", nil), "u1", auth.RoleEmployee)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("employee export status = %d, want 200", rec.Code)
	}
	if store.lastFilter.UserID != "u1" {
		t.Fatalf("employee export filter user = %q, want the requester's own id", store.lastFilter.UserID)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "check_in") || !strings.Contains(body, "Amal Perera") {
		t.Fatalf("unexpected CSV body: %q", body)
	}
}

func TestExportAdminFiltersByUser(t *testing.T) {
	store := &fakeReader{}
	router := testRouter(store)

	req := asUser(httptest.NewRequest(http.MethodGet, "/attendance/export?userId=u9", nil), "admin1", auth.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("admin export status = %d, want 200", rec.Code)
	}
	if store.lastFilter.UserID != "u9" {
		t.Fatalf("admin export filter user = %q, want u9", store.lastFilter.UserID)
	}
}

func TestMonthlyReportAdminOnly(t *testing.T) {
	router := testRouter(&fakeReader{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/attendance/reports/monthly?year=2026&month=8", nil), "u1", auth.RoleEmployee)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee monthly report status = %d, want 403", rec.Code)
	}
}

func TestPunchErrorMapsDirectoryNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"user", user.ErrNotFound},
		{"organization", org.ErrNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/attendance/check-in", nil)
		writePunchError(rec, req, tc.err)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s not found mapped to %d, want 404", tc.name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"not_found"`) {
			t.Fatalf("%s not found body = %q, want code not_found", tc.name, rec.Body.String())
		}
	}
}
