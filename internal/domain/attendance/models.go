package attendance

import "time"

const (
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusAbsent     = "absent"
)

// Punctuality classification, fixed at check-in time.
const (
	PunctualityBeforeTime = "before-time"
	PunctualityOnTime     = "on-time"
	PunctualityLate       = "late"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Record is one user's attendance for one calendar day. At most one record
// exists per (organization, user, day); the storage layer enforces this with
// a unique index.
type Record struct {
	ID               string     `json:"id"`
	OrgID            string     `json:"organizationId"`
	UserID           string     `json:"userId"`
	Date             time.Time  `json:"date"`
	CheckInTime      *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime     *time.Time `json:"checkOutTime,omitempty"`
	CheckInLocation  *Location  `json:"checkInLocation,omitempty"`
	CheckOutLocation *Location  `json:"checkOutLocation,omitempty"`
	CheckInSelfie    string     `json:"checkInSelfie,omitempty"`
	CheckOutSelfie   string     `json:"checkOutSelfie,omitempty"`
	Status           string     `json:"status"`
	AttendanceStatus string     `json:"attendanceStatus,omitempty"`
	TotalHours       *float64   `json:"totalHours,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DayOf truncates a timestamp to midnight in its own location, producing the
// record's day key.
func DayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
