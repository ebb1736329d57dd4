package attendancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/org"
	"hrms/internal/domain/user"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

// RecordReader is the read surface the handlers need from the record store.
type RecordReader interface {
	FindDayRecord(ctx context.Context, orgID, userID string, day time.Time) (*attendance.Record, error)
	ListRecords(ctx context.Context, orgID string, filter attendance.ListFilter) ([]attendance.RecordRow, error)
	ForEachRecord(ctx context.Context, orgID string, filter attendance.ListFilter, fn func(attendance.RecordRow) error) error
}

type Handler struct {
	Service        *attendance.Service
	Store          RecordReader
	ReportDir      string
	MaxSelfieBytes int64
}

func NewHandler(service *attendance.Service, store RecordReader, reportDir string, maxSelfieBytes int64) *Handler {
	return &Handler{Service: service, Store: store, ReportDir: reportDir, MaxSelfieBytes: maxSelfieBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/attendance/check-in", h.HandleCheckIn)
		r.Post("/attendance/check-out", h.HandleCheckOut)
		r.Get("/attendance/today", h.HandleToday)
		r.Get("/attendance", h.HandleList)
		// Employees may export too; parseFilter scopes them to themselves.
		r.Get("/attendance/export", h.HandleExportCSV)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/attendance/reports/monthly", h.HandleMonthlyReport)
		})
	})
}

type punchRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handlePunch(w, r, h.Service.CheckIn)
}

func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handlePunch(w, r, h.Service.CheckOut)
}

type punchFunc func(ctx context.Context, orgID, userID string, p attendance.Punch) (*attendance.Record, error)

func (h *Handler) handlePunch(w http.ResponseWriter, r *http.Request, fn punchFunc) {
	userCtx, _ := middleware.GetUser(r.Context())

	punch, ok := h.parsePunch(w, r)
	if !ok {
		return
	}

	rec, err := fn(r.Context(), userCtx.OrgID, userCtx.UserID, punch)
	if err != nil {
		writePunchError(w, r, err)
		return
	}
	api.Success(w, rec, requestctx.GetRequestID(r.Context()))
}

// parsePunch accepts either a JSON body or a multipart form with an optional
// selfie part.
func (h *Handler) parsePunch(w http.ResponseWriter, r *http.Request) (attendance.Punch, bool) {
	reqID := requestctx.GetRequestID(r.Context())
	contentType := strings.ToLower(r.Header.Get("Content-Type"))

	if strings.Contains(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.MaxSelfieBytes); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart form", reqID)
			return attendance.Punch{}, false
		}
		lat, err1 := strconv.ParseFloat(r.FormValue("latitude"), 64)
		lon, err2 := strconv.ParseFloat(r.FormValue("longitude"), 64)
		if err1 != nil || err2 != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "latitude and longitude are required", reqID)
			return attendance.Punch{}, false
		}
		punch := attendance.Punch{Latitude: lat, Longitude: lon, Address: r.FormValue("address")}

		file, header, err := r.FormFile("selfie")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, h.MaxSelfieBytes+1))
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read selfie", reqID)
				return attendance.Punch{}, false
			}
			if int64(len(data)) > h.MaxSelfieBytes {
				api.Fail(w, http.StatusRequestEntityTooLarge, "selfie_too_large", "selfie exceeds maximum size", reqID)
				return attendance.Punch{}, false
			}
			punch.Selfie = data
			punch.SelfieName = header.Filename
		}
		return punch, true
	}

	var payload punchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return attendance.Punch{}, false
	}
	return attendance.Punch{Latitude: payload.Latitude, Longitude: payload.Longitude, Address: payload.Address}, true
}

func writePunchError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := requestctx.GetRequestID(r.Context())

	var outOfRange *attendance.OutOfRangeError
	var upload *attendance.UploadError
	switch {
	case errors.As(err, &outOfRange):
		api.FailWithDetails(w, http.StatusForbidden, "out_of_range", outOfRange.Error(), map[string]int{
			"distanceMeters": outOfRange.DistanceMeters,
			"radiusMeters":   outOfRange.RadiusMeters,
		}, reqID)
	case errors.Is(err, attendance.ErrWeeklyOff):
		api.Fail(w, http.StatusBadRequest, "weekly_off", err.Error(), reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", err.Error(), reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		api.Fail(w, http.StatusConflict, "already_checked_out", err.Error(), reqID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusBadRequest, "not_checked_in", err.Error(), reqID)
	case errors.As(err, &upload):
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store selfie", reqID)
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", reqID)
	case errors.Is(err, user.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	case errors.Is(err, org.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_error", "attendance operation failed", reqID)
	}
}

func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	rec, err := h.Store.FindDayRecord(r.Context(), userCtx.OrgID, userCtx.UserID, attendance.DayOf(time.Now()))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to load today's record", requestctx.GetRequestID(r.Context()))
		return
	}
	if rec == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no attendance record for today", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	filter, ok := h.parseFilter(w, r, userCtx.Role, userCtx.UserID)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	rows, err := h.Store.ListRecords(r.Context(), userCtx.OrgID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list attendance", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"records": rows,
		"limit":   page.Limit,
		"offset":  page.Offset,
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	filter, ok := h.parseFilter(w, r, userCtx.Role, userCtx.UserID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := h.Service.WriteCSV(r.Context(), w, userCtx.OrgID, filter, h.Store); err != nil {
		// Headers are already out; the broken stream is the signal.
		return
	}
}

func (h *Handler) HandleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	reqID := requestctx.GetRequestID(r.Context())

	year, err1 := strconv.Atoi(r.URL.Query().Get("year"))
	month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "year and month query parameters are required", reqID)
		return
	}

	path, err := h.Service.MonthlyReportPDF(r.Context(), h.ReportDir, userCtx.OrgID, year, time.Month(month), h.Store)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate report", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%d-%02d.pdf"`, year, month))
	http.ServeFile(w, r, path)
}

// parseFilter builds the record filter from query parameters. Employees are
// always scoped to their own records regardless of the userId parameter.
func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request, role, selfID string) (attendance.ListFilter, bool) {
	reqID := requestctx.GetRequestID(r.Context())
	var filter attendance.ListFilter

	if role == auth.RoleAdmin {
		filter.UserID = strings.TrimSpace(r.URL.Query().Get("userId"))
	} else {
		filter.UserID = selfID
	}

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "from must be a valid date", reqID)
		return attendance.ListFilter{}, false
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "to must be a valid date", reqID)
		return attendance.ListFilter{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "to must not be before from", reqID)
		return attendance.ListFilter{}, false
	}
	filter.From = from
	filter.To = to
	return filter, true
}
