// Package httpapi is the public HTTP transport of the stargram server.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/metrics"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/services"
)

type SessionService interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
	Revoke(ctx context.Context, userID int64) error
}

type UserService interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (string, error)
	FindByName(ctx context.Context, userName string) (*models.User, error)
}

type FeedService interface {
	Create(ctx context.Context, user *models.User, parts services.PartReader) (*models.Feed, error)
	GetImage(ctx context.Context, feedID string, position int) (*models.Image, error)
	ListHome(ctx context.Context) ([]*models.FeedWithUser, error)
	ListByUser(ctx context.Context, userName string) ([]*models.FeedWithUser, error)
}

type CommentService interface {
	Create(ctx context.Context, user *models.User, feedID, content string) (*models.Comment, error)
	List(ctx context.Context, feedID string) ([]*models.Comment, error)
}

// Services bundles the business layer the handlers call into.
type Services struct {
	Sessions SessionService
	Users    UserService
	Feeds    FeedService
	Comments CommentService
}

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	sessions SessionService
	users    UserService
	feeds    FeedService
	comments CommentService
	limiter  *rateLimiter
}

func NewServer(cfg *config.Config, l logging.Logger, m *metrics.Metrics, svc Services) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   l.With("module", "http_server"),
		metrics:  m,
		sessions: svc.Sessions,
		users:    svc.Users,
		feeds:    svc.Feeds,
		comments: svc.Comments,
	}
	if cfg.UploadRatePerSecond > 0 {
		s.limiter = newRateLimiter(cfg.UploadRatePerSecond, cfg.UploadRateBurst, s.logger)
	}
	return s
}

// Router builds the route table. Routes under /feeds are registered from
// most to least specific so "home" is never taken for a user name.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog, s.instrument)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/users", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/logout", s.authenticate(http.HandlerFunc(s.handleLogout))).Methods(http.MethodPost)
	r.Handle("/users/@me", s.authenticate(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)
	r.Handle("/user/{name}", s.authenticate(http.HandlerFunc(s.handleFindUser))).Methods(http.MethodGet)

	var upload http.Handler = http.HandlerFunc(s.handleCreateFeed)
	if s.limiter != nil {
		upload = s.limiter.Handler(upload)
	}
	r.Handle("/feeds", s.authenticate(upload)).Methods(http.MethodPost)
	r.Handle("/feeds/home", s.authenticate(http.HandlerFunc(s.handleHomeFeeds))).Methods(http.MethodGet)
	r.HandleFunc("/feeds/{id}/images/{index}", s.handleGetImage).Methods(http.MethodGet)
	r.Handle("/feeds/{id}/comments", s.authenticate(http.HandlerFunc(s.handleListComments))).Methods(http.MethodGet)
	r.Handle("/feeds/{id}/comments", s.authenticate(http.HandlerFunc(s.handleCreateComment))).Methods(http.MethodPost)
	r.Handle("/feeds/{name}", s.authenticate(http.HandlerFunc(s.handleUserFeeds))).Methods(http.MethodGet)

	return r
}

// Handler is the router bounded by the configured request timeout.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	if s.cfg.RequestTimeout > 0 {
		h = http.TimeoutHandler(h, s.cfg.RequestTimeout, http.StatusText(http.StatusServiceUnavailable))
	}
	return h
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.EndpointAddrHTTP)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	if s.limiter != nil {
		go s.limiter.cleanupLoop(ctx, time.Minute)
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
