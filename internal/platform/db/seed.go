package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
)

// Seed provisions a demo organization with one admin user. It is idempotent
// and only intended for development and test environments.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName, cfg.DefaultOfficeRadius)
	if err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string, radius float64) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO organizations (name, email, office_latitude, office_longitude, office_radius)
    VALUES ($1, $2, 0, 0, $3)
    RETURNING id
  `, name, "admin@"+slug(name)+".local", radius).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (organization_id, email, password_hash, first_name, last_name, role, status, employee_number, remote)
    VALUES ($1, $2, $3, 'Admin', 'User', $4, $5, 'EMP001', false)
  `, orgID, email, hash, auth.RoleAdmin, auth.UserStatusActive)
	return err
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	if len(out) == 0 {
		return "org"
	}
	return string(out)
}
