package shift

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Shift bounds a working day: start/end wall-clock times, a late cutoff for
// punctuality, and a 7-element working-day mask indexed from Sunday.
type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime string    `json:"startTime"` // HH:MM, 24-hour
	EndTime   string    `json:"endTime"`
	LateTime  string    `json:"lateTime"`
	Days      []int     `json:"days"` // index 0 = Sunday; 0 = off day
	OrgID     string    `json:"organizationId,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// DefaultShiftID is the reserved identifier of the built-in fallback shift.
const DefaultShiftID = "default"

// MaxPerOrg caps the number of shifts an organization may define.
const MaxPerOrg = 10

var (
	ErrNotFound     = errors.New("shift not found")
	ErrNameTaken    = errors.New("shift name already exists for this organization")
	ErrLimitReached = errors.New("maximum number of shifts reached for this organization")
	ErrInUse        = errors.New("shift has users assigned")
	ErrNotOwned     = errors.New("shift does not belong to this organization")
)

// Default returns the immutable fallback shift applied to users without an
// explicit assignment. A fresh value is returned on every call so callers
// cannot mutate the shared definition.
func Default() Shift {
	return Shift{
		ID:        DefaultShiftID,
		Name:      "Default",
		StartTime: "09:00",
		EndTime:   "17:00",
		LateTime:  "09:30",
		Days:      []int{0, 1, 1, 1, 1, 1, 0},
		IsDefault: true,
	}
}

// WorkingOn reports whether the given weekday is a working day.
func (s Shift) WorkingOn(day time.Weekday) bool {
	idx := int(day)
	if idx < 0 || idx >= len(s.Days) {
		return false
	}
	return s.Days[idx] != 0
}

// MinutesOfDay parses an HH:MM wall-clock string into minutes since midnight.
func MinutesOfDay(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hours*60 + minutes, nil
}

// Validate checks the time ordering invariant (start <= late <= end) and the
// shape of the working-day mask.
func (s Shift) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("shift name is required")
	}
	start, err := MinutesOfDay(s.StartTime)
	if err != nil {
		return err
	}
	late, err := MinutesOfDay(s.LateTime)
	if err != nil {
		return err
	}
	end, err := MinutesOfDay(s.EndTime)
	if err != nil {
		return err
	}
	if late < start || late > end {
		return errors.New("late time must be between start time and end time")
	}
	if len(s.Days) != 7 {
		return errors.New("days must have exactly 7 elements (Sunday to Saturday)")
	}
	for _, d := range s.Days {
		if d != 0 && d != 1 {
			return errors.New("day flags must be 0 or 1")
		}
	}
	return nil
}
