package database

import "log"

// Completed quizzes keep a plain copy of the quiz id, not a foreign key, so a
// completion record survives deletion of the quiz it refers to. Deleting a
// user cascades to that user's quizzes and completions.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		text TEXT NOT NULL,
		options TEXT NOT NULL,
		answer TEXT NOT NULL DEFAULT '[]',
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS completed_quizzes (
		completion_id UUID PRIMARY KEY,
		quiz_id BIGINT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS completed_quizzes_user_idx
		ON completed_quizzes (user_id, completed_at DESC)`,
}

// EnsureSchema creates the tables and indexes on startup if they are missing.
func EnsureSchema() {
	for _, stmt := range schemaStatements {
		if _, err := DB.Exec(stmt); err != nil {
			log.Fatalf("Error applying schema: %v", err)
		}
	}
}
