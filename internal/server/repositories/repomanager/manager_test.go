package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNew_Kinds(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := New(StorageMemory, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)

	m, err = New(StoragePostgres, db)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)

	_, err = New(StoragePostgres, nil)
	require.Error(t, err)

	_, err = New("sqlite", nil)
	require.Error(t, err)
}

func TestNew_WithBlacklist(t *testing.T) {
	custom := blacklist.NewMemoryRepository()

	m, err := New(StorageMemory, nil, WithBlacklist(custom))
	require.NoError(t, err)
	assert.Same(t, custom, m.Blacklist(nil))

	db, _ := newDB(t)
	defer db.Close()
	m, err = New(StoragePostgres, db, WithBlacklist(custom))
	require.NoError(t, err)
	assert.Same(t, custom, m.Blacklist(db))
}

func TestPostgresFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(db)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.RefreshTokens(db))
	assert.NotNil(t, m.ResetTokens(db))
	assert.NotNil(t, m.Listings(db))
	assert.NotNil(t, m.Favorites(db))
	assert.IsType(t, &blacklist.PostgresRepository{}, m.Blacklist(db))
	assert.Equal(t, dbx.DBTX(db), m.Conn())
}

func TestPostgresWithTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	m := NewPostgresRepositoryManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return nil
	}))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return errors.New("nope")
	})
	require.EqualError(t, err, "nope")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryManager_SharesState(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepositoryManager()

	require.NoError(t, m.RunMigrations(ctx))
	assert.Nil(t, m.Conn())

	err := m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return m.RefreshTokens(tx).Save(ctx, "u1", "tok", time.Now().Add(time.Hour))
	})
	require.NoError(t, err)

	rt, err := m.RefreshTokens(m.Conn()).Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", rt.UserID)

	assert.Same(t, m.Users(nil), m.Users(m.Conn()))
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db)
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
