package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ = `(?s)^\s*INSERT\s+INTO\s+images\s*\(feed_id,\s*position,\s*content_type,\s*data,\s*storage_key\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	getQ    = `(?s)^\s*SELECT\s+feed_id,\s*position,\s*content_type,\s*data,\s*storage_key\s+FROM\s+images\s+WHERE\s+feed_id\s*=\s*\$1\s+AND\s+position\s*=\s*\$2\s*$`
)

func TestCreate_InlineData(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("feed-1", 0, "image/png", []byte{1, 2, 3}, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Image{FeedID: "feed-1", Position: 0, ContentType: "image/png", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("feed-1", 1, "image/jpeg", nil, "feeds/feed-1/1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Image{FeedID: "feed-1", Position: 1, ContentType: "image/jpeg", StorageKey: "feeds/feed-1/1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Image{FeedID: "feed-1", ContentType: "image/png", Data: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"feed_id", "position", "content_type", "data", "storage_key"}
	mock.ExpectQuery(getQ).WithArgs("feed-1", 0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("feed-1", 0, "image/png", []byte{9}, nil))
	mock.ExpectQuery(getQ).WithArgs("feed-1", 1).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("feed-1", 1, "image/jpeg", nil, "feeds/feed-1/1"))
	mock.ExpectQuery(getQ).WithArgs("feed-1", 2).WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "feed-1", 0)
	require.NoError(t, err)
	assert.Equal(t, &models.Image{FeedID: "feed-1", Position: 0, ContentType: "image/png", Data: []byte{9}}, got)

	got, err = repo.Get(context.Background(), "feed-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "feeds/feed-1/1", got.StorageKey)
	assert.Nil(t, got.Data)

	_, err = repo.Get(context.Background(), "feed-1", 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
