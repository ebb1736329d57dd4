package userhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/shift"
	"hrms/internal/domain/user"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *user.Service
	Shifts  *shift.Service
}

func NewHandler(service *user.Service, shifts *shift.Service) *Handler {
	return &Handler{Service: service, Shifts: shifts}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/users/me", h.HandleMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/users", h.HandleList)
			r.Post("/users", h.HandleCreate)
			r.Get("/users/{userID}", h.HandleGet)
			r.Put("/users/{userID}", h.HandleUpdate)
			r.Delete("/users/{userID}", h.HandleDelete)
			r.Post("/users/{userID}/resend-setup", h.HandleResendSetup)
			r.Put("/users/{userID}/shift", h.HandleAssignShift)
			r.Delete("/users/{userID}/shift", h.HandleRemoveShift)
		})
	})
}

type userRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Remote    bool   `json:"remote"`
}

type assignShiftRequest struct {
	ShiftID string `json:"shiftId"`
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	u, err := h.Service.GetUser(r.Context(), userCtx.OrgID, userCtx.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, u, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	users, total, err := h.Service.ListUsers(r.Context(), userCtx.OrgID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list users", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"users":  users,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	v.Enum("role", payload.Role, []string{auth.RoleAdmin, auth.RoleEmployee}, "role must be admin or employee")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	u, err := h.Service.CreateUser(r.Context(), userCtx.OrgID, user.NewUser{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      payload.Role,
		Remote:    payload.Remote,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			api.Fail(w, http.StatusConflict, "email_in_use", "email already registered", requestctx.GetRequestID(r.Context()))
			return
		}
		if errors.Is(err, user.ErrEmployeeNumberTaken) {
			api.Fail(w, http.StatusConflict, "employee_number_conflict", "employee number allocation conflict, retry", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "create_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Created(w, u, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	u, err := h.Service.GetUser(r.Context(), userCtx.OrgID, chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, u, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if payload.Status == "" {
		payload.Status = auth.UserStatusActive
	}

	u, err := h.Service.UpdateUser(r.Context(), userCtx.OrgID, chi.URLParam(r, "userID"), user.NewUser{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		Role:      payload.Role,
		Remote:    payload.Remote,
	}, payload.Status)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "update_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, u, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")
	if targetID == userCtx.UserID {
		api.Fail(w, http.StatusBadRequest, "self_delete", "cannot delete your own account", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteUser(r.Context(), userCtx.OrgID, targetID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete user", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleResendSetup(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if err := h.Service.ResendSetupLink(r.Context(), userCtx.OrgID, chi.URLParam(r, "userID")); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "resend_failed", "failed to resend setup link", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "setup_link_sent"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleAssignShift(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload assignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	err := h.Shifts.AssignToUser(r.Context(), userCtx.OrgID, chi.URLParam(r, "userID"), payload.ShiftID)
	if err != nil {
		if errors.Is(err, shift.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "shift not found", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_shift", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "assigned"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRemoveShift(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if err := h.Shifts.RemoveFromUser(r.Context(), userCtx.OrgID, chi.URLParam(r, "userID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "remove_failed", "failed to remove shift", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, requestctx.GetRequestID(r.Context()))
}
