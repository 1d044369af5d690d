package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS topics (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users(id),
	channel    TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	log.Info().Str("module", "store").Str("driver", "sqlite").Str("path", path).Msg("store ready")
	return &SQLite{db: db}, nil
}

func (s *SQLite) AddUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	u := User{ID: NewID(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, toMillis(u.CreatedAt))
	if err != nil {
		return User{}, sqliteErr("add user", err)
	}
	return u, nil
}

func (s *SQLite) UserByName(ctx context.Context, name string) (User, error) {
	return s.user(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE name = ?`, name)
}

func (s *SQLite) UserByID(ctx context.Context, id string) (User, error) {
	return s.user(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLite) user(ctx context.Context, query string, arg string) (User, error) {
	var (
		u  User
		ms int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &ms)
	if err != nil {
		return User{}, sqliteErr("query user", err)
	}
	u.CreatedAt = fromMillis(ms)
	return u, nil
}

func (s *SQLite) NewTopic(ctx context.Context, authorID, channel, title, content string) (Topic, error) {
	t := Topic{ID: NewID(), AuthorID: authorID, Channel: channel, Title: title, Content: content, CreatedAt: now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id, author_id, channel, title, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AuthorID, t.Channel, t.Title, t.Content, toMillis(t.CreatedAt))
	if err != nil {
		return Topic{}, sqliteErr("add topic", err)
	}
	return t, nil
}

func (s *SQLite) Topic(ctx context.Context, id string) (Topic, error) {
	var (
		t  Topic
		ms int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, author_id, channel, title, content, created_at FROM topics WHERE id = ?`, id).
		Scan(&t.ID, &t.AuthorID, &t.Channel, &t.Title, &t.Content, &ms)
	if err != nil {
		return Topic{}, sqliteErr("query topic", err)
	}
	t.CreatedAt = fromMillis(ms)
	return t, nil
}

func (s *SQLite) DeleteTopic(ctx context.Context, id, authorID string) error {
	t, err := s.Topic(ctx, id)
	if err != nil {
		return err
	}
	if t.AuthorID != authorID {
		return fmt.Errorf("delete topic %s: %w", id, ErrForbidden)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id); err != nil {
		return sqliteErr("delete topic", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func sqliteErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		if se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		if se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
