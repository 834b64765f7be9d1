package resets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, "u1", "t1", now.Add(time.Hour)))
	require.NoError(t, r.Create(ctx, "u1", "t2", now.Add(-time.Minute)))
	require.NoError(t, r.Create(ctx, "u2", "t3", now.Add(time.Hour)))
	require.ErrorIs(t, r.Create(ctx, "u2", "t3", now), common.ErrorAlreadyExists)

	pr, err := r.Consume(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", pr.UserID)
	assert.False(t, pr.Expired(now))

	_, err = r.Consume(ctx, "t1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.DeleteByUser(ctx, "u2"))
	_, err = r.Consume(ctx, "t3")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgres_CreateAndConsume(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+password_resets\s*\(token,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`).
		WithArgs("t1", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	q := `(?s)^DELETE\s+FROM\s+password_resets\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+token,\s*user_id,\s*expires_at,\s*created_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at"}).
			AddRow("t1", "u1", exp, exp.Add(-time.Hour)))
	mock.ExpectQuery(q).
		WithArgs("t1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).
		WithArgs("t2").
		WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Create(context.Background(), "u1", "t1", exp))

	pr, err := repo.Consume(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", pr.UserID)

	_, err = repo.Consume(context.Background(), "t1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Consume(context.Background(), "t2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Deletes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+password_resets\s+WHERE\s+user_id\s*=\s*\$1\s*$`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+password_resets\s+WHERE\s+expires_at\s*<=\s*\$1\s*$`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.DeleteByUser(context.Background(), "u1"))
	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
