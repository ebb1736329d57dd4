package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/platform/config"
)

const (
	JobTempRegistrationSweep = "temp_registration_sweep"
	JobExpiredTokenSweep     = "expired_token_sweep"
)

// Service runs periodic maintenance work: sweeping expired pending
// registrations and spent credential tokens. The attendance core owns no
// background tasks; everything here is provisioning hygiene.
type Service struct {
	DB    *pgxpool.Pool
	Cfg   config.Config
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		queue: make(chan job, 32),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.TempCleanupInterval > 0 {
		go s.scheduleSweeps(ctx, s.Cfg.TempCleanupInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleSweeps(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobTempRegistrationSweep, func(ctx context.Context) (any, error) {
				tag, err := s.DB.Exec(ctx, "DELETE FROM temp_registrations WHERE expires_at < now()")
				if err != nil {
					return nil, err
				}
				return map[string]any{"deleted": tag.RowsAffected()}, nil
			})
			s.Enqueue(JobExpiredTokenSweep, func(ctx context.Context) (any, error) {
				setup, err := s.DB.Exec(ctx, "DELETE FROM password_setup_tokens WHERE expires_at < now()")
				if err != nil {
					return nil, err
				}
				resets, err := s.DB.Exec(ctx, "DELETE FROM password_resets WHERE expires_at < now()")
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"setupTokens": setup.RowsAffected(),
					"resetTokens": resets.RowsAffected(),
				}, nil
			})
		}
	}
}
