package attendance

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"
)

type sliceIterator struct {
	rows []RecordRow
}

func (s sliceIterator) ForEachRecord(ctx context.Context, orgID string, filter ListFilter, fn func(RecordRow) error) error {
	for _, row := range s.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func TestWriteCSV(t *testing.T) {
	checkIn := time.Date(2026, 8, 24, 9, 15, 0, 0, time.UTC)
	checkOut := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)
	hours := 8.75

	rows := []RecordRow{
		{
			Record: Record{
				Date:             time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
				CheckInTime:      &checkIn,
				CheckOutTime:     &checkOut,
				CheckInLocation:  &Location{Latitude: 6.9271, Longitude: 79.8612},
				Status:           StatusCheckedOut,
				AttendanceStatus: PunctualityOnTime,
				TotalHours:       &hours,
			},
			FirstName: "Amal",
			LastName:  "Perera",
			Email:     "amal@example.com",
		},
		{
			Record: Record{
				Date:        time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
				CheckInTime: &checkIn,
				Status:      StatusCheckedIn,
			},
			FirstName: "Nimal",
			LastName:  "Silva",
			Email:     "nimal@example.com",
		},
	}

	var buf bytes.Buffer
	svc := &Service{}
	if err := svc.WriteCSV(context.Background(), &buf, "org1", ListFilter{}, sliceIterator{rows: rows}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	parsed, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(parsed))
	}
	if parsed[0][0] != "date" {
		t.Fatalf("header starts with %q, want date", parsed[0][0])
	}

	first := parsed[1]
	if first[0] != "2026-08-24" || first[1] != "Amal Perera" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[11] != "8.75" {
		t.Fatalf("total hours = %q, want 8.75", first[11])
	}

	second := parsed[2]
	if second[4] != "" || second[11] != "" {
		t.Fatalf("open record should have empty check-out and hours: %v", second)
	}
}
