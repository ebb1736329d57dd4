package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/dashboard"
	"hrms/internal/domain/org"
	"hrms/internal/domain/shift"
	"hrms/internal/domain/user"
	"hrms/internal/platform/config"
	cryptoutil "hrms/internal/platform/crypto"
	"hrms/internal/platform/db"
	"hrms/internal/platform/email"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/storage"
	attendancehandler "hrms/internal/transport/http/handlers/attendance"
	authhandler "hrms/internal/transport/http/handlers/auth"
	dashboardhandler "hrms/internal/transport/http/handlers/dashboard"
	orghandler "hrms/internal/transport/http/handlers/org"
	shifthandler "hrms/internal/transport/http/handlers/shift"
	userhandler "hrms/internal/transport/http/handlers/user"
	"hrms/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service

	crypto *cryptoutil.Service
}

// New connects, migrates, and wires the full application. The returned App is
// ready to serve; Run starts listening.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, DB: pool, crypto: crypto}
	app.Router = app.buildRouter()
	app.Jobs = jobs.New(pool, cfg)
	return app, nil
}

func (a *App) buildRouter() http.Handler {
	cfg := a.Config
	pool := a.DB

	crypto := a.crypto
	mailer := email.New(cfg)
	files := storage.NewDisk(cfg.UploadDir)

	userStore := user.NewStore(pool)
	orgStore := org.NewStore(pool)
	shiftStore := shift.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	dashboardStore := dashboard.NewStore(pool)

	userService := user.NewService(userStore, cfg, mailer)
	orgService := org.NewService(orgStore, cfg, mailer)
	shiftService := shift.NewService(shiftStore)
	attendanceService := attendance.NewService(
		attendanceStore,
		directory{users: userStore, orgs: orgStore},
		shiftService,
		files,
	)
	dashboardService := dashboard.NewService(dashboardStore, attendanceStore)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(userStore, userService, cfg.JWTSecret, crypto).RegisterRoutes(r)
		orghandler.NewHandler(orgService).RegisterRoutes(r)
		userhandler.NewHandler(userService, shiftService).RegisterRoutes(r)
		shifthandler.NewHandler(shiftService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService, attendanceStore, cfg.ReportDir, cfg.MaxSelfieBytes).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboardService).RegisterRoutes(r)
	})

	return router
}

// Run blocks serving HTTP until the listener fails or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// directory adapts the user and organization stores to the read-only view the
// attendance lifecycle needs.
type directory struct {
	users *user.Store
	orgs  *org.Store
}

func (d directory) Profile(ctx context.Context, orgID, userID string) (attendance.Profile, error) {
	u, err := d.users.Get(ctx, orgID, userID)
	if err != nil {
		return attendance.Profile{}, err
	}
	return attendance.Profile{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Remote:    u.Remote,
	}, nil
}

func (d directory) Office(ctx context.Context, orgID string) (attendance.Office, error) {
	o, err := d.orgs.Get(ctx, orgID)
	if err != nil {
		return attendance.Office{}, err
	}
	return attendance.Office{
		Point:        attendance.Point{Latitude: o.OfficeLatitude, Longitude: o.OfficeLongitude},
		RadiusMeters: o.OfficeRadius,
	}, nil
}
