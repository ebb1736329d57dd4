package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RecordIterator streams joined records for listings and exports.
type RecordIterator interface {
	ForEachRecord(ctx context.Context, orgID string, filter ListFilter, fn func(RecordRow) error) error
}

var csvHeader = []string{
	"date", "employee", "email",
	"check_in", "check_out",
	"check_in_latitude", "check_in_longitude",
	"check_out_latitude", "check_out_longitude",
	"status", "punctuality", "total_hours",
}

// WriteCSV streams an organization's attendance records as CSV. Rows are
// written as they arrive from the store, so arbitrarily large ranges never
// buffer in memory.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, orgID string, filter ListFilter, store RecordIterator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	err := store.ForEachRecord(ctx, orgID, filter, func(row RecordRow) error {
		return cw.Write(csvRow(row))
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(row RecordRow) []string {
	return []string{
		row.Date.Format("2006-01-02"),
		row.FirstName + " " + row.LastName,
		row.Email,
		formatClock(row.CheckInTime),
		formatClock(row.CheckOutTime),
		formatCoord(row.CheckInLocation, func(l *Location) float64 { return l.Latitude }),
		formatCoord(row.CheckInLocation, func(l *Location) float64 { return l.Longitude }),
		formatCoord(row.CheckOutLocation, func(l *Location) float64 { return l.Latitude }),
		formatCoord(row.CheckOutLocation, func(l *Location) float64 { return l.Longitude }),
		row.Status,
		row.AttendanceStatus,
		formatHours(row.TotalHours),
	}
}

// MonthlyReportPDF renders one organization's attendance for a calendar month
// into a PDF under reportDir and returns the file path.
func (s *Service) MonthlyReportPDF(ctx context.Context, reportDir, orgID string, year int, month time.Month, store RecordIterator) (string, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(reportDir, fmt.Sprintf("attendance-%s-%d-%02d.pdf", orgID, year, month))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{28, 60, 24, 24, 28, 28, 22}
	headers := []string{"Date", "Employee", "In", "Out", "Status", "Punctuality", "Hours"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	var totalHours float64
	var recordCount int
	err := store.ForEachRecord(ctx, orgID, ListFilter{From: from, To: to}, func(row RecordRow) error {
		cells := []string{
			row.Date.Format("2006-01-02"),
			row.FirstName + " " + row.LastName,
			formatClock(row.CheckInTime),
			formatClock(row.CheckOutTime),
			row.Status,
			row.AttendanceStatus,
			formatHours(row.TotalHours),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
		if row.TotalHours != nil {
			totalHours += *row.TotalHours
		}
		recordCount++
		return nil
	})
	if err != nil {
		return "", err
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Records: %d    Total hours: %.2f", recordCount, totalHours))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func formatCoord(loc *Location, pick func(*Location) float64) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", pick(loc))
}

func formatHours(hours *float64) string {
	if hours == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *hours)
}
