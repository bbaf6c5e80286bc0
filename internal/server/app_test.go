package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/stargram/internal/server/blobstore"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
)

type fakeManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (f *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.LogLevel = "error"
	return &c
}

// gotPool records the pool settings passed to openDB by stubDeps.
var gotPool repomanager.PoolConfig

// stubDeps swaps the construction seams for the duration of a test.
func stubDeps(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origManager, origS3 := openDB, newRepositoryManager, newS3Store
	t.Cleanup(func() { openDB, newRepositoryManager, newS3Store = origOpen, origManager, origS3 })

	openDB = func(ctx context.Context, dsn string, pool repomanager.PoolConfig) (*sql.DB, error) {
		gotPool = pool
		return db, nil
	}
	newRepositoryManager = func() repomanager.RepositoryManager { return m }
	return mock
}

func TestNewApp_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(ctx context.Context, dsn string, pool repomanager.PoolConfig) (*sql.DB, error) {
		return nil, errors.New("refused")
	}

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_MigrationErrorClosesDB(t *testing.T) {
	m := &fakeManager{migrateErr: errors.New("bad migration")}
	mock := stubDeps(t, m)
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_S3Error(t *testing.T) {
	m := &fakeManager{}
	mock := stubDeps(t, m)
	mock.ExpectClose()
	newS3Store = func(ctx context.Context, c *config.Config) (blobstore.Store, error) {
		return nil, errors.New("no credentials")
	}

	cfg := testConfig()
	cfg.BlobBackend = config.BlobBackendS3
	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob store init error")
	assert.True(t, m.migrated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"
	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	m := &fakeManager{}
	mock := stubDeps(t, m)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	require.True(t, m.migrated)
	assert.Equal(t, repomanager.PoolConfig{MaxOpenConns: 25, MaxIdleConns: 10, ConnMaxLifetime: 30 * time.Minute}, gotPool)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
