package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"forumhub/internal/model"
)

// Migrate creates the schema and seeds the role catalog.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL REFERENCES roles(name),
			PRIMARY KEY (user_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL DEFAULT 'OPEN',
			author_id UUID NOT NULL REFERENCES users(id),
			course_id UUID NOT NULL REFERENCES courses(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_created_at ON topics (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_status ON topics (status)`,
		`CREATE TABLE IF NOT EXISTS responses (
			id UUID PRIMARY KEY,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			solution BOOLEAN NOT NULL DEFAULT false,
			author_id UUID NOT NULL REFERENCES users(id),
			topic_id UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_topic ON responses (topic_id, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_responses_solution
			ON responses (topic_id) WHERE solution`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return err
		}
	}

	for _, role := range []model.Role{model.RoleUser, model.RoleModerator, model.RoleAdmin} {
		_, err := pool.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT DO NOTHING`, string(role))
		if err != nil {
			return err
		}
	}
	return nil
}

// RoleExists reports whether a role name is present in the catalog. The
// server refuses to boot when the default registration role is missing.
func RoleExists(ctx context.Context, pool *pgxpool.Pool, role model.Role) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, string(role)).Scan(&exists)
	return exists, err
}
