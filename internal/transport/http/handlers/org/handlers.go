package orghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/org"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *org.Service
}

func NewHandler(service *org.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/organizations/register", h.HandleRegister)
	r.Post("/organizations/verify-otp", h.HandleVerifyOTP)
	r.Get("/organizations/check-email", h.HandleCheckEmail)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/organizations/me", h.HandleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/organizations/me", h.HandleUpdate)
	})
}

type registerRequest struct {
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type updateRequest struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	OfficeLatitude  float64 `json:"officeLatitude"`
	OfficeLongitude float64 `json:"officeLongitude"`
	OfficeRadius    float64 `json:"officeRadius"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("companyName", payload.CompanyName, "company name is required")
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	err := h.Service.Register(r.Context(), org.Signup{
		CompanyName: payload.CompanyName,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Password:    payload.Password,
	})
	if err != nil {
		if errors.Is(err, org.ErrEmailInUse) {
			api.Fail(w, http.StatusConflict, "email_in_use", "email already in use", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "registration_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"status": "verification_sent"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var payload verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	orgID, userID, err := h.Service.VerifyOTP(r.Context(), payload.Email, payload.OTP)
	if err != nil {
		if errors.Is(err, org.ErrOTPInvalid) {
			api.Fail(w, http.StatusBadRequest, "otp_invalid", "verification code is invalid or expired", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "verification_failed", "failed to complete registration", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"organizationId": orgID, "adminUserId": userID}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email query parameter is required", requestctx.GetRequestID(r.Context()))
		return
	}
	available, err := h.Service.EmailAvailable(r.Context(), email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "check_failed", "failed to check email", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"available": available}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	organization, err := h.Service.GetOrganization(r.Context(), userCtx.OrgID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, organization, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	organization, err := h.Service.UpdateOrganization(r.Context(), userCtx.OrgID, org.CompanyProfile{
		Name:            payload.Name,
		Address:         payload.Address,
		OfficeLatitude:  payload.OfficeLatitude,
		OfficeLongitude: payload.OfficeLongitude,
		OfficeRadius:    payload.OfficeRadius,
	})
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "organization not found", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "update_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, organization, requestctx.GetRequestID(r.Context()))
}
