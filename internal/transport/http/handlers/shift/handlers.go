package shifthandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/shift"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Service *shift.Service
}

func NewHandler(service *shift.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/shifts", h.HandleList)
		r.Get("/shifts/{shiftID}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/shifts", h.HandleCreate)
			r.Put("/shifts/{shiftID}", h.HandleUpdate)
			r.Delete("/shifts/{shiftID}", h.HandleDelete)
		})
	})
}

type shiftRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	LateTime  string `json:"lateTime"`
	Days      []int  `json:"days"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	shifts, err := h.Service.ListShifts(r.Context(), userCtx.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list shifts", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, shifts, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	sh, err := h.Service.GetShift(r.Context(), userCtx.OrgID, chi.URLParam(r, "shiftID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "shift not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sh, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	sh, err := h.Service.CreateShift(r.Context(), userCtx.OrgID, shift.Shift{
		Name:      payload.Name,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		LateTime:  payload.LateTime,
		Days:      payload.Days,
	})
	if err != nil {
		switch {
		case errors.Is(err, shift.ErrNameTaken):
			api.Fail(w, http.StatusConflict, "name_taken", err.Error(), requestctx.GetRequestID(r.Context()))
		case errors.Is(err, shift.ErrLimitReached):
			api.Fail(w, http.StatusConflict, "limit_reached", err.Error(), requestctx.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusBadRequest, "invalid_shift", err.Error(), requestctx.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, sh, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	sh, err := h.Service.UpdateShift(r.Context(), userCtx.OrgID, shift.Shift{
		ID:        chi.URLParam(r, "shiftID"),
		Name:      payload.Name,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		LateTime:  payload.LateTime,
		Days:      payload.Days,
	})
	if err != nil {
		switch {
		case errors.Is(err, shift.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "shift not found", requestctx.GetRequestID(r.Context()))
		case errors.Is(err, shift.ErrNameTaken):
			api.Fail(w, http.StatusConflict, "name_taken", err.Error(), requestctx.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusBadRequest, "invalid_shift", err.Error(), requestctx.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, sh, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if err := h.Service.DeleteShift(r.Context(), userCtx.OrgID, chi.URLParam(r, "shiftID")); err != nil {
		switch {
		case errors.Is(err, shift.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "shift not found", requestctx.GetRequestID(r.Context()))
		case errors.Is(err, shift.ErrInUse):
			api.Fail(w, http.StatusConflict, "shift_in_use", err.Error(), requestctx.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusBadRequest, "delete_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}
