package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrms/internal/domain/shift"
	"hrms/internal/platform/storage"
)

type fakeRecords struct {
	records map[string]*Record
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[string]*Record{}}
}

func dayKey(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

func (f *fakeRecords) FindDayRecord(ctx context.Context, orgID, userID string, day time.Time) (*Record, error) {
	rec, ok := f.records[dayKey(userID, day)]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeRecords) Create(ctx context.Context, rec *Record) error {
	key := dayKey(rec.UserID, rec.Date)
	if _, exists := f.records[key]; exists {
		return ErrAlreadyCheckedIn
	}
	rec.ID = key
	clone := *rec
	f.records[key] = &clone
	return nil
}

func (f *fakeRecords) Save(ctx context.Context, rec *Record) error {
	key := dayKey(rec.UserID, rec.Date)
	if _, exists := f.records[key]; !exists {
		return ErrNotFound
	}
	clone := *rec
	f.records[key] = &clone
	return nil
}

type fakeDirectory struct {
	profile Profile
	office  Office
}

func (f fakeDirectory) Profile(ctx context.Context, orgID, userID string) (Profile, error) {
	return f.profile, nil
}

func (f fakeDirectory) Office(ctx context.Context, orgID string) (Office, error) {
	return f.office, nil
}

type fakeShifts struct {
	shift shift.Shift
}

func (f fakeShifts) ResolveForUser(ctx context.Context, orgID, userID string) (shift.Shift, error) {
	return f.shift, nil
}

type fakeFiles struct {
	fail  bool
	paths []string
}

func (f *fakeFiles) Store(ctx context.Context, data []byte, meta storage.Metadata) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	path := "selfies/" + meta.UserID + "/" + meta.Filename
	f.paths = append(f.paths, path)
	return path, nil
}

func newTestService(records RecordStore, office Office, remote bool) *Service {
	return &Service{
		Records: records,
		Directory: fakeDirectory{
			profile: Profile{UserID: "u1", FirstName: "Amal", LastName: "Perera", Remote: remote},
			office:  office,
		},
		Shifts: fakeShifts{shift: shift.Default()},
		Files:  &fakeFiles{},
	}
}

var testOffice = Office{Point: Point{Latitude: 6.9271, Longitude: 79.8612}, RadiusMeters: 100}

// Monday within working days of the default shift.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func officePunch(at time.Time) Punch {
	return Punch{Latitude: testOffice.Latitude, Longitude: testOffice.Longitude, At: at}
}

func TestCheckInOnTime(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	rec, err := svc.CheckIn(context.Background(), "org1", "u1", officePunch(monday(9, 15)))
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Status != StatusCheckedIn {
		t.Fatalf("status = %q, want %q", rec.Status, StatusCheckedIn)
	}
	if rec.AttendanceStatus != PunctualityOnTime {
		t.Fatalf("punctuality = %q, want %q", rec.AttendanceStatus, PunctualityOnTime)
	}
	if rec.CheckInTime == nil {
		t.Fatal("check-in time not set")
	}
}

func TestCheckInOutOfRange(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	punch := Punch{Latitude: 7.2906, Longitude: 80.6337, At: monday(9, 0)}
	_, err := svc.CheckIn(context.Background(), "org1", "u1", punch)

	var outOfRange *OutOfRangeError
	if !errors.As(err, &outOfRange) {
		t.Fatalf("err = %v, want *OutOfRangeError", err)
	}
}

func TestCheckInRemoteBypassesGeofence(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, true)

	punch := Punch{Latitude: 7.2906, Longitude: 80.6337, At: monday(9, 0)}
	rec, err := svc.CheckIn(context.Background(), "org1", "u1", punch)
	if err != nil {
		t.Fatalf("remote check-in: %v", err)
	}
	if rec.AttendanceStatus != PunctualityOnTime {
		t.Fatalf("punctuality = %q, want %q", rec.AttendanceStatus, PunctualityOnTime)
	}
}

func TestCheckInWeeklyOff(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	sunday := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	_, err := svc.CheckIn(context.Background(), "org1", "u1", officePunch(sunday))
	if !errors.Is(err, ErrWeeklyOff) {
		t.Fatalf("err = %v, want ErrWeeklyOff", err)
	}
}

func TestCheckInWeeklyOffBeatsGeofence(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	// Off day and far from the office: the off day wins.
	sunday := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	punch := Punch{Latitude: 7.2906, Longitude: 80.6337, At: sunday}
	_, err := svc.CheckIn(context.Background(), "org1", "u1", punch)
	if !errors.Is(err, ErrWeeklyOff) {
		t.Fatalf("err = %v, want ErrWeeklyOff", err)
	}
}

func TestCheckInTwiceFails(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	if _, err := svc.CheckIn(context.Background(), "org1", "u1", officePunch(monday(9, 0))); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	_, err := svc.CheckIn(context.Background(), "org1", "u1", officePunch(monday(9, 5)))
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)

	_, err := svc.CheckOut(context.Background(), "org1", "u1", officePunch(monday(17, 0)))
	if !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("err = %v, want ErrNotCheckedIn", err)
	}
}

func TestFullDayFlow(t *testing.T) {
	records := newFakeRecords()
	svc := newTestService(records, testOffice, false)
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, "org1", "u1", officePunch(monday(9, 15))); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	rec, err := svc.CheckOut(ctx, "org1", "u1", officePunch(monday(18, 0)))
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if rec.Status != StatusCheckedOut {
		t.Fatalf("status = %q, want %q", rec.Status, StatusCheckedOut)
	}
	if rec.TotalHours == nil || *rec.TotalHours != 8.75 {
		t.Fatalf("total hours = %v, want 8.75", rec.TotalHours)
	}

	_, err = svc.CheckOut(ctx, "org1", "u1", officePunch(monday(18, 30)))
	if !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Fatalf("second check-out err = %v, want ErrAlreadyCheckedOut", err)
	}
}

func TestCheckInSelfieUploadFailure(t *testing.T) {
	svc := newTestService(newFakeRecords(), testOffice, false)
	svc.Files = &fakeFiles{fail: true}

	punch := officePunch(monday(9, 0))
	punch.Selfie = []byte{0xff, 0xd8}
	punch.SelfieName = "selfie.jpg"

	_, err := svc.CheckIn(context.Background(), "org1", "u1", punch)
	var upload *UploadError
	if !errors.As(err, &upload) {
		t.Fatalf("err = %v, want *UploadError", err)
	}

	// The failed attempt must not leave a record behind.
	rec, err := svc.Records.FindDayRecord(context.Background(), "org1", "u1", DayOf(monday(9, 0)))
	if err != nil || rec != nil {
		t.Fatalf("record after failed upload = %v, %v; want none", rec, err)
	}
}

func TestCheckInStoresOptionalSelfie(t *testing.T) {
	files := &fakeFiles{}
	svc := newTestService(newFakeRecords(), testOffice, false)
	svc.Files = files

	punch := officePunch(monday(9, 0))
	punch.Selfie = []byte{0xff, 0xd8}
	punch.SelfieName = "morning.jpg"

	rec, err := svc.CheckIn(context.Background(), "org1", "u1", punch)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.CheckInSelfie == "" {
		t.Fatal("selfie path not recorded")
	}
	if len(files.paths) != 1 {
		t.Fatalf("stored %d files, want 1", len(files.paths))
	}
}
