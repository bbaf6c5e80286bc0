package services

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/dbx"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/comments"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/feeds"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/images"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int64

	createErr error
	getErr    error
}

func newFakeUsersRepo(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byName: map[string]*models.User{}, nextID: 1}
	for _, u := range us {
		r.byName[u.UserName] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.nextID++
	r.byName[u.UserName] = u
	return u, nil
}

func (r *fakeUsersRepo) GetByUserName(ctx context.Context, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- sessions ---

type fakeSessionsRepo struct {
	mu     sync.Mutex
	byUser map[int64]*models.Session

	upsertErr error
	findErr   error
	deleteErr error
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{byUser: map[int64]*models.Session{}}
}

func (r *fakeSessionsRepo) Upsert(ctx context.Context, userID int64, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.byUser[userID] = &models.Session{UserID: userID, Token: token, CreatedAt: time.Now()}
	return nil
}

func (r *fakeSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, s := range r.byUser {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeSessionsRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.byUser, userID)
	return nil
}

// --- feeds ---

type fakeFeedsRepo struct {
	created []*models.Feed
	list    []*models.FeedWithUser

	createErr error
	getErr    error
	listErr   error
	listedBy  string
}

func (r *fakeFeedsRepo) Create(ctx context.Context, f *models.Feed) error {
	if r.createErr != nil {
		return r.createErr
	}
	f.CreatedAt = time.Now()
	r.created = append(r.created, f)
	return nil
}

func (r *fakeFeedsRepo) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, f := range r.created {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeFeedsRepo) ListAll(ctx context.Context) ([]*models.FeedWithUser, error) {
	return r.list, r.listErr
}

func (r *fakeFeedsRepo) ListByUserName(ctx context.Context, name string) ([]*models.FeedWithUser, error) {
	r.listedBy = name
	return r.list, r.listErr
}

// --- images ---

type fakeImagesRepo struct {
	created   []*models.Image
	createErr error
	getErr    error
}

func (r *fakeImagesRepo) Create(ctx context.Context, img *models.Image) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, img)
	return nil
}

func (r *fakeImagesRepo) Get(ctx context.Context, feedID string, position int) (*models.Image, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, img := range r.created {
		if img.FeedID == feedID && img.Position == position {
			cp := *img
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- comments ---

type fakeCommentsRepo struct {
	created   []*models.Comment
	createErr error
	listErr   error
}

func (r *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment, userID int64) error {
	if r.createErr != nil {
		return r.createErr
	}
	c.ID = int64(len(r.created) + 1)
	c.CreatedAt = time.Now()
	r.created = append(r.created, c)
	return nil
}

func (r *fakeCommentsRepo) ListByFeedID(ctx context.Context, feedID string) ([]*models.Comment, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*models.Comment, 0)
	for _, c := range r.created {
		if c.FeedID == feedID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	f *fakeFeedsRepo
	i *fakeImagesRepo
	c *fakeCommentsRepo
}

func newFakeRepoManager(us ...*models.User) *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(us...),
		s: newFakeSessionsRepo(),
		f: &fakeFeedsRepo{},
		i: &fakeImagesRepo{},
		c: &fakeCommentsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository            { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository      { return m.s }
func (m *fakeRepoManager) Feeds(dbx.DBTX) feeds.Repository            { return m.f }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository          { return m.i }
func (m *fakeRepoManager) Comments(dbx.DBTX) comments.Repository      { return m.c }

// --- blob store ---

type fakeBlobStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
	putFail int // fail the n-th put (1-based) when >0
	puts    int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (b *fakeBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	b.puts++
	if b.putErr != nil && (b.putFail == 0 || b.puts == b.putFail) {
		return b.putErr
	}
	b.objects[key] = data
	return nil
}

func (b *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	delete(b.objects, key)
	return nil
}

// --- multipart fixtures ---

type testPart struct {
	name     string
	filename string
	data     []byte
}

func captionPart(text string) testPart { return testPart{name: "caption", data: []byte(text)} }

func imagePart(name string, data []byte) testPart {
	return testPart{name: name, filename: name + ".bin", data: data}
}

func multipartReader(t *testing.T, parts ...testPart) *multipart.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		var (
			pw  io.Writer
			err error
		)
		if p.filename == "" {
			pw, err = w.CreateFormField(p.name)
		} else {
			pw, err = w.CreateFormFile(p.name, p.filename)
		}
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return multipart.NewReader(&buf, w.Boundary())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// errPartReader fails on the n-th NextPart call after yielding from inner.
type errPartReader struct {
	inner PartReader
	after int
	err   error
	calls int
}

func (r *errPartReader) NextPart() (*multipart.Part, error) {
	r.calls++
	if r.calls > r.after {
		return nil, r.err
	}
	return r.inner.NextPart()
}
