// Package store persists accounts and discussion topics of the REST API.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Boxcall/internal/config"
	"github.com/oklog/ulid/v2"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Topic struct {
	ID        string
	AuthorID  string
	Channel   string
	Title     string
	Content   string
	CreatedAt time.Time
}

type Store interface {
	AddUser(ctx context.Context, name, email, passwordHash string) (User, error)
	UserByName(ctx context.Context, name string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
	NewTopic(ctx context.Context, authorID, channel, title, content string) (Topic, error)
	Topic(ctx context.Context, id string) (Topic, error)
	// DeleteTopic removes a topic owned by authorID.
	DeleteTopic(ctx context.Context, id, authorID string) error
	Close() error
}

// NewID returns a fresh sortable record id.
func NewID() string {
	return ulid.Make().String()
}

// Open connects the driver named in cfg. Driver "none" yields a nil Store.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		p, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
