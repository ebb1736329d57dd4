package attendance

import (
	"context"
	"time"

	"hrms/internal/domain/shift"
	"hrms/internal/platform/storage"
)

// Profile is the slice of a user record the lifecycle controller needs.
type Profile struct {
	UserID    string
	FirstName string
	LastName  string
	Remote    bool
}

// Office is an organization's registered geofence.
type Office struct {
	Point
	RadiusMeters float64
}

// Directory provides read-only access to users and organizations.
type Directory interface {
	Profile(ctx context.Context, orgID, userID string) (Profile, error)
	Office(ctx context.Context, orgID string) (Office, error)
}

// ShiftResolver returns the shift governing a user's attendance, falling
// back to the default shift when the user has none assigned.
type ShiftResolver interface {
	ResolveForUser(ctx context.Context, orgID, userID string) (shift.Shift, error)
}

// RecordStore persists attendance records. Create must report a duplicate
// (organization, user, day) as ErrAlreadyCheckedIn; the unique index is the
// authority for concurrent check-in attempts.
type RecordStore interface {
	FindDayRecord(ctx context.Context, orgID, userID string, day time.Time) (*Record, error)
	Create(ctx context.Context, rec *Record) error
	Save(ctx context.Context, rec *Record) error
}

// Service orchestrates check-in and check-out as single business
// transactions. It holds no state across requests and performs no retries;
// collaborator failures surface to the caller.
type Service struct {
	Records   RecordStore
	Directory Directory
	Shifts    ShiftResolver
	Files     storage.FileStore
}

func NewService(records RecordStore, directory Directory, shifts ShiftResolver, files storage.FileStore) *Service {
	return &Service{Records: records, Directory: directory, Shifts: shifts, Files: files}
}

// Punch is one reported check-in or check-out attempt.
type Punch struct {
	Latitude   float64
	Longitude  float64
	Address    string
	At         time.Time
	Selfie     []byte
	SelfieName string
}

func (p Punch) at() time.Time {
	if p.At.IsZero() {
		return time.Now()
	}
	return p.At
}

func (s *Service) CheckIn(ctx context.Context, orgID, userID string, p Punch) (*Record, error) {
	now := p.at()

	profile, err := s.Directory.Profile(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	// Shift resolution happens before any location or record work so an off
	// day is rejected regardless of where the user is standing.
	sh, err := s.Shifts.ResolveForUser(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !sh.WorkingOn(now.Weekday()) {
		return nil, ErrWeeklyOff
	}

	if !profile.Remote {
		if err := s.checkGeofence(ctx, orgID, p); err != nil {
			return nil, err
		}
	}

	day := DayOf(now)
	existing, err := s.Records.FindDayRecord(ctx, orgID, userID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CheckInTime != nil {
		return nil, ErrAlreadyCheckedIn
	}

	punctuality, err := Classify(now, sh)
	if err != nil {
		return nil, err
	}

	selfiePath, err := s.storeSelfie(ctx, orgID, userID, p)
	if err != nil {
		return nil, err
	}

	rec := existing
	if rec == nil {
		rec = &Record{OrgID: orgID, UserID: userID, Date: day}
	}
	rec.CheckInTime = &now
	rec.CheckInLocation = &Location{Latitude: p.Latitude, Longitude: p.Longitude, Address: p.Address}
	rec.CheckInSelfie = selfiePath
	rec.Status = StatusCheckedIn
	rec.AttendanceStatus = punctuality

	if existing == nil {
		if err := s.Records.Create(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err := s.Records.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) CheckOut(ctx context.Context, orgID, userID string, p Punch) (*Record, error) {
	now := p.at()

	profile, err := s.Directory.Profile(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if !profile.Remote {
		if err := s.checkGeofence(ctx, orgID, p); err != nil {
			return nil, err
		}
	}

	day := DayOf(now)
	rec, err := s.Records.FindDayRecord(ctx, orgID, userID, day)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	selfiePath, err := s.storeSelfie(ctx, orgID, userID, p)
	if err != nil {
		return nil, err
	}

	rec.CheckOutTime = &now
	rec.CheckOutLocation = &Location{Latitude: p.Latitude, Longitude: p.Longitude, Address: p.Address}
	rec.CheckOutSelfie = selfiePath
	rec.Status = StatusCheckedOut
	// Total hours are recomputed from the two timestamps, never accumulated.
	total := now.Sub(*rec.CheckInTime).Hours()
	rec.TotalHours = &total

	if err := s.Records.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) checkGeofence(ctx context.Context, orgID string, p Punch) error {
	office, err := s.Directory.Office(ctx, orgID)
	if err != nil {
		return err
	}
	return CheckRadius(Point{Latitude: p.Latitude, Longitude: p.Longitude}, office.Point, office.RadiusMeters)
}

func (s *Service) storeSelfie(ctx context.Context, orgID, userID string, p Punch) (string, error) {
	if len(p.Selfie) == 0 {
		return "", nil
	}
	path, err := s.Files.Store(ctx, p.Selfie, storage.Metadata{
		OrgID:    orgID,
		UserID:   userID,
		Kind:     "selfies",
		Filename: p.SelfieName,
	})
	if err != nil {
		return "", &UploadError{Err: err}
	}
	return path, nil
}
