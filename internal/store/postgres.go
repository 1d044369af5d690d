package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Boxcall/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS topics (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users(id),
	channel    TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at BIGINT NOT NULL
);`

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Postgres struct {
	pool *pgxpool.Pool
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*Postgres, error) {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	log.Info().Str("module", "store").Str("driver", "postgres").Str("host", cfg.Host).Str("db", cfg.Name).Msg("store ready")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) AddUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	u := User{ID: NewID(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now()}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, toMillis(u.CreatedAt))
	if err != nil {
		return User{}, pgErr("add user", err)
	}
	return u, nil
}

func (p *Postgres) UserByName(ctx context.Context, name string) (User, error) {
	return p.user(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE name = $1`, name)
}

func (p *Postgres) UserByID(ctx context.Context, id string) (User, error) {
	return p.user(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (p *Postgres) user(ctx context.Context, query, arg string) (User, error) {
	var (
		u  User
		ms int64
	)
	if err := p.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &ms); err != nil {
		return User{}, pgErr("query user", err)
	}
	u.CreatedAt = fromMillis(ms)
	return u, nil
}

func (p *Postgres) NewTopic(ctx context.Context, authorID, channel, title, content string) (Topic, error) {
	t := Topic{ID: NewID(), AuthorID: authorID, Channel: channel, Title: title, Content: content, CreatedAt: now()}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO topics (id, author_id, channel, title, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.AuthorID, t.Channel, t.Title, t.Content, toMillis(t.CreatedAt))
	if err != nil {
		return Topic{}, pgErr("add topic", err)
	}
	return t, nil
}

func (p *Postgres) Topic(ctx context.Context, id string) (Topic, error) {
	var (
		t  Topic
		ms int64
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, author_id, channel, title, content, created_at FROM topics WHERE id = $1`, id).
		Scan(&t.ID, &t.AuthorID, &t.Channel, &t.Title, &t.Content, &ms)
	if err != nil {
		return Topic{}, pgErr("query topic", err)
	}
	t.CreatedAt = fromMillis(ms)
	return t, nil
}

func (p *Postgres) DeleteTopic(ctx context.Context, id, authorID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM topics WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return pgErr("delete topic", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.Topic(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("delete topic %s: %w", id, ErrForbidden)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func pgErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
