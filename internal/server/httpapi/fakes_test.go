package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/metrics"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/services"
)

const validToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var alice = &models.User{ID: 1, UserName: "alice", Password: "$2a$10$hash", CreatedAt: time.UnixMilli(1000)}

type fakeSessions struct {
	resolves  atomic.Int32
	revokeErr error
	revoked   []int64
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	f.resolves.Add(1)
	if token == validToken {
		return alice, nil
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeSessions) Revoke(ctx context.Context, userID int64) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeUsers struct {
	registerOut *models.User
	registerErr error
	loginOut    string
	loginErr    error
	findErr     error

	gotUser, gotPassword string
}

func (f *fakeUsers) Register(ctx context.Context, userName, password string) (*models.User, error) {
	f.gotUser, f.gotPassword = userName, password
	return f.registerOut, f.registerErr
}

func (f *fakeUsers) Login(ctx context.Context, userName, password string) (string, error) {
	f.gotUser, f.gotPassword = userName, password
	return f.loginOut, f.loginErr
}

func (f *fakeUsers) FindByName(ctx context.Context, userName string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &models.User{ID: 2, UserName: userName}, nil
}

type fakeFeeds struct {
	createErr   error
	calls       int
	gotUser     *models.User
	partNames   []string
	sawMaxBytes bool

	image    *models.Image
	imageErr error
	gotID    string
	gotIndex int

	list       []*models.FeedWithUser
	listErr    error
	listedHome bool
	listedUser string
}

// Create drains parts the way the real pipeline does and returns a feed
// with one image per non-caption part.
func (f *fakeFeeds) Create(ctx context.Context, user *models.User, parts services.PartReader) (*models.Feed, error) {
	f.calls++
	f.gotUser = user
	images := 0
	for {
		p, err := parts.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			f.sawMaxBytes = errors.As(err, &maxErr)
			return nil, common.ErrorPayloadTooLarge
		}
		if _, err := io.ReadAll(p); err != nil {
			var maxErr *http.MaxBytesError
			f.sawMaxBytes = errors.As(err, &maxErr)
			return nil, common.ErrorPayloadTooLarge
		}
		f.partNames = append(f.partNames, p.FormName())
		if p.FormName() != services.CaptionFieldName {
			images++
		}
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Feed{ID: "feed-1", UserID: user.ID, Caption: "c", ImageCount: images, CreatedAt: time.UnixMilli(1700000000000)}, nil
}

func (f *fakeFeeds) GetImage(ctx context.Context, feedID string, position int) (*models.Image, error) {
	f.gotID, f.gotIndex = feedID, position
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.image, nil
}

func (f *fakeFeeds) ListHome(ctx context.Context) ([]*models.FeedWithUser, error) {
	f.listedHome = true
	return f.list, f.listErr
}

func (f *fakeFeeds) ListByUser(ctx context.Context, userName string) ([]*models.FeedWithUser, error) {
	f.listedUser = userName
	return f.list, f.listErr
}

type fakeComments struct {
	createErr error
	listErr   error
	gotFeedID string
	gotText   string
}

func (f *fakeComments) Create(ctx context.Context, user *models.User, feedID, content string) (*models.Comment, error) {
	f.gotFeedID, f.gotText = feedID, content
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Comment{ID: 1, FeedID: feedID, UserName: user.UserName, Content: content, CreatedAt: time.UnixMilli(5)}, nil
}

func (f *fakeComments) List(ctx context.Context, feedID string) ([]*models.Comment, error) {
	f.gotFeedID = feedID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []*models.Comment{{ID: 1, FeedID: feedID, UserName: "bob", Content: "hi", CreatedAt: time.UnixMilli(5)}}, nil
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	sessions *fakeSessions
	users    *fakeUsers
	feeds    *fakeFeeds
	comments *fakeComments
	metrics  *metrics.Metrics
}

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	return &c
}

func newTestEnv(t *testing.T, mutate ...func(c *config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	env := &testEnv{
		sessions: &fakeSessions{},
		users:    &fakeUsers{},
		feeds:    &fakeFeeds{},
		comments: &fakeComments{},
		metrics:  metrics.New(),
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	env.server = NewServer(cfg, logger, env.metrics, Services{
		Sessions: env.sessions,
		Users:    env.users,
		Feeds:    env.feeds,
		Comments: env.comments,
	})
	env.handler = env.server.Handler()
	return env
}

func multipartBody(t *testing.T, fields map[string][]byte, order ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range order {
		var (
			pw  io.Writer
			err error
		)
		if name == services.CaptionFieldName {
			pw, err = w.CreateFormField(name)
		} else {
			pw, err = w.CreateFormFile(name, name+".png")
		}
		require.NoError(t, err)
		_, err = pw.Write(fields[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
