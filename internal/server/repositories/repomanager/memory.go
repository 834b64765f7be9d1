package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/listings"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/resets"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/users"
)

// MemoryRepositoryManager holds one in-memory repository per kind; the DBTX
// argument of every getter is ignored.
//
// WithTx serializes callbacks against each other but cannot roll back, so a
// failing callback leaves its earlier writes in place.
type MemoryRepositoryManager struct {
	txMu sync.Mutex

	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	blacklist     blacklist.Repository
	resets        *resets.MemoryRepository
	listings      *listings.MemoryRepository
	favorites     *favorites.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		blacklist:     blacklist.NewMemoryRepository(),
		resets:        resets.NewMemoryRepository(),
		listings:      listings.NewMemoryRepository(),
		favorites:     favorites.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Conn() dbx.DBTX { return nil }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Blacklist(dbx.DBTX) blacklist.Repository { return m.blacklist }

func (m *MemoryRepositoryManager) ResetTokens(dbx.DBTX) resets.Repository { return m.resets }

func (m *MemoryRepositoryManager) Listings(dbx.DBTX) listings.Repository { return m.listings }

func (m *MemoryRepositoryManager) Favorites(dbx.DBTX) favorites.Repository { return m.favorites }
