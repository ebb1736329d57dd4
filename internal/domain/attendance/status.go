package attendance

import (
	"time"

	"hrms/internal/domain/shift"
)

// Classify maps a check-in instant onto the shift's punctuality bands:
// strictly before the start time is before-time, between start and the late
// cutoff inclusive is on-time, after the cutoff is late.
func Classify(at time.Time, sh shift.Shift) (string, error) {
	startMinutes, err := shift.MinutesOfDay(sh.StartTime)
	if err != nil {
		return "", err
	}
	lateMinutes, err := shift.MinutesOfDay(sh.LateTime)
	if err != nil {
		return "", err
	}

	checkInMinutes := at.Hour()*60 + at.Minute()
	switch {
	case checkInMinutes < startMinutes:
		return PunctualityBeforeTime, nil
	case checkInMinutes <= lateMinutes:
		return PunctualityOnTime, nil
	default:
		return PunctualityLate, nil
	}
}
