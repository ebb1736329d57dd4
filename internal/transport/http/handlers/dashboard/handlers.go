package dashboardhandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/dashboard"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type Handler struct {
	Service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/dashboard/stats", h.HandleStats)
		r.Get("/dashboard/recent", h.HandleRecent)
	})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	stats, err := h.Service.Stats(r.Context(), userCtx.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute stats", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	userCtx, _ := middleware.GetUser(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.Service.RecentActivity(r.Context(), userCtx.OrgID, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "recent_failed", "failed to load recent activity", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, requestctx.GetRequestID(r.Context()))
}
