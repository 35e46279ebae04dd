package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaLockKey int64 = 2026031501

// EnsureSchema creates the content and chat history tables. DDL runs under an
// advisory lock so concurrent api/worker startups do not race.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS courses (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	overview TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS course_modules (
	course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	id TEXT NOT NULL,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	theory_text TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (course_id, id)
);

CREATE TABLE IF NOT EXISTS module_qna (
	course_id TEXT NOT NULL,
	module_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	PRIMARY KEY (course_id, module_id, position),
	FOREIGN KEY (course_id, module_id) REFERENCES course_modules(course_id, id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS topic_chat_messages (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	course_id TEXT NOT NULL,
	module_id TEXT NOT NULL DEFAULT '',
	sender TEXT NOT NULL,
	text TEXT NOT NULL,
	time_display TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topic_chat_user_topic ON topic_chat_messages(user_id, course_id, module_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
