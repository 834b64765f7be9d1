// Package repomanager selects a storage backend and vends its repositories.
// Services depend only on RepositoryManager and never branch on the backend.
package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/listings"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/resets"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX. Pass Conn() for
// plain calls, or the handle given to a WithTx callback for transactional ones.
type RepositoryManager interface {
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	RunMigrations(ctx context.Context) error

	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Blacklist(db dbx.DBTX) blacklist.Repository
	ResetTokens(db dbx.DBTX) resets.Repository
	Listings(db dbx.DBTX) listings.Repository
	Favorites(db dbx.DBTX) favorites.Repository
}

type StorageKind string

const (
	StorageMemory   StorageKind = "memory"
	StoragePostgres StorageKind = "postgres"
)

// Option adjusts a manager built by New.
type Option func(*options)

type options struct {
	blacklist blacklist.Repository
}

// WithBlacklist replaces the backend's revocation registry, e.g. with
// blacklist.RedisRepository.
func WithBlacklist(b blacklist.Repository) Option {
	return func(o *options) { o.blacklist = b }
}

// New builds the manager for kind. db is required for StoragePostgres and
// ignored for StorageMemory.
func New(kind StorageKind, db *sql.DB, opts ...Option) (RepositoryManager, error) {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}

	switch kind {
	case StorageMemory:
		m := NewMemoryRepositoryManager()
		if o.blacklist != nil {
			m.blacklist = o.blacklist
		}
		return m, nil
	case StoragePostgres:
		if db == nil {
			return nil, errors.New("postgres storage requires a database handle")
		}
		m := NewPostgresRepositoryManager(db)
		m.blacklist = o.blacklist
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}
