package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/user"
	cryptoutil "hrms/internal/platform/crypto"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Users   *user.Store
	Service *user.Service
	Secret  string
	Crypto  *cryptoutil.Service
	Issuer  string
}

func NewHandler(users *user.Store, service *user.Service, secret string, crypto *cryptoutil.Service) *Handler {
	return &Handler{Users: users, Service: service, Secret: secret, Crypto: crypto, Issuer: "HRMS"}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/setup-password", h.HandleSetupPassword)
	r.Post("/auth/request-reset", h.HandleRequestReset)
	r.Post("/auth/reset", h.HandleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/auth/mfa/setup", h.HandleMFASetup)
		r.Post("/auth/mfa/enable", h.HandleMFAEnable)
		r.Post("/auth/mfa/disable", h.HandleMFADisable)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type setupPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	creds, err := h.Users.CredentialsByEmail(r.Context(), payload.Email)
	if err != nil || creds.Status != auth.UserStatusActive || creds.PasswordHash == "" {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(creds.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	if creds.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestctx.GetRequestID(r.Context()))
			return
		}
		secret, err := h.mfaSecret(r, creds.UserID)
		if err != nil || secret == "" || !totp.Validate(payload.MFACode, secret) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestctx.GetRequestID(r.Context()))
			return
		}
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: creds.UserID, OrgID: creds.OrgID, Role: creds.Role}, auth.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]string{"id": creds.UserID, "organizationId": creds.OrgID, "role": creds.Role},
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleSetupPassword(w http.ResponseWriter, r *http.Request) {
	var payload setupPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.SetupPassword(r.Context(), payload.Token, payload.Password); err != nil {
		if errors.Is(err, user.ErrTokenInvalid) {
			api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "setup_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "password_set"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	// The response is identical whether or not the email exists.
	_ = h.Service.RequestPasswordReset(r.Context(), payload.Email)
	api.Success(w, map[string]string{"status": "reset_requested"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		if errors.Is(err, user.ErrTokenInvalid) {
			api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadRequest, "reset_failed", err.Error(), requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "password_reset"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if h.Crypto == nil || !h.Crypto.Configured() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestctx.GetRequestID(r.Context()))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.Issuer,
		AccountName: userCtx.UserID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", requestctx.GetRequestID(r.Context()))
		return
	}
	secret := key.Secret()
	encrypted, err := h.Crypto.EncryptString(secret)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Users.SetMFASecret(r.Context(), userCtx.UserID, encrypted); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"secret": secret, "otpauthUrl": key.URL()}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if !h.verifyMFACode(w, r, userCtx.UserID) {
		return
	}
	if err := h.Users.SetMFAEnabled(r.Context(), userCtx.UserID, true); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_enable_failed", "failed to enable mfa", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "enabled"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	if !h.verifyMFACode(w, r, userCtx.UserID) {
		return
	}
	if err := h.Users.SetMFAEnabled(r.Context(), userCtx.UserID, false); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_disable_failed", "failed to disable mfa", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "disabled"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) verifyMFACode(w http.ResponseWriter, r *http.Request, userID string) bool {
	if h.Crypto == nil || !h.Crypto.Configured() {
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestctx.GetRequestID(r.Context()))
		return false
	}
	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return false
	}
	secret, err := h.mfaSecret(r, userID)
	if err != nil || secret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestctx.GetRequestID(r.Context()))
		return false
	}
	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestctx.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) mfaSecret(r *http.Request, userID string) (string, error) {
	encrypted, err := h.Users.MFASecret(r.Context(), userID)
	if err != nil || len(encrypted) == 0 {
		return "", err
	}
	if h.Crypto != nil && h.Crypto.Configured() {
		return h.Crypto.DecryptString(encrypted)
	}
	return string(encrypted), nil
}
