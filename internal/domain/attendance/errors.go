package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrNotCheckedIn      = errors.New("must check in before checking out")
	ErrWeeklyOff         = errors.New("today is your weekly off day")
	ErrNotFound          = errors.New("not found")
)

// OutOfRangeError reports a position outside the office geofence. Distances
// are rounded to whole meters for display.
type OutOfRangeError struct {
	DistanceMeters int
	RadiusMeters   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are not within the office location radius: your distance %dm, allowed %dm", e.DistanceMeters, e.RadiusMeters)
}

// UploadError wraps a failed selfie persistence attempt. A supplied selfie
// that cannot be stored fails the whole operation; an absent selfie is not an
// error.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("selfie upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
