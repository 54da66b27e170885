// Package web serves the recdash dashboard: route guard, pages and htmx fragments.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/recdash/recdash/pkg/filters"
	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
	"github.com/recdash/recdash/pkg/session"
	"github.com/recdash/recdash/pkg/theme"
)

const (
	DefaultBind           = "127.0.0.1:9999"
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultSweepInterval  = time.Minute
	shutdownTimeout       = 5 * time.Second
)

// LoginService authenticates against the API.
type LoginService interface {
	Login(ctx context.Context, username, password string) (*recommendations.LoginResponse, error)
}

type Config struct {
	Bind           string
	SearchDebounce time.Duration
	SweepInterval  time.Duration
}

type Server struct {
	Session *session.Store
	Filters *filters.Store
	Theme   *theme.Store
	Auth    LoginService
	Cache   *query.Cache
	Actions *query.Actions
	Log     *logrus.Logger

	cfg Config
}

func New(cfg Config, sess *session.Store, flt *filters.Store, th *theme.Store, auth LoginService, cache *query.Cache, actions *query.Actions, log *logrus.Logger) *Server {
	if cfg.Bind == "" {
		cfg.Bind = DefaultBind
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = DefaultSearchDebounce
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		Session: sess,
		Filters: flt,
		Theme:   th,
		Auth:    auth,
		Cache:   cache,
		Actions: actions,
		Log:     log,
		cfg:     cfg,
	}
}

// Handler returns the dashboard's routes wrapped in the access log and store providers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /theme", s.handleTheme)

	// Protected
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleDashboard("Dashboard")))
	mux.HandleFunc("GET /policies", s.requireAuth(s.handleDashboard("Policies")))
	mux.HandleFunc("GET /events", s.requireAuth(s.handleDashboard("Events")))
	mux.HandleFunc("GET /waivers", s.requireAuth(s.handleDashboard("Waivers")))
	mux.HandleFunc("GET /recommendations", s.requireAuth(s.handleList(false)))
	mux.HandleFunc("GET /recommendations/archive", s.requireAuth(s.handleList(true)))
	mux.HandleFunc("GET /recommendations/more", s.requireAuth(s.handleMore))
	mux.HandleFunc("GET /recommendations/{id}", s.requireAuth(s.handleDetail))
	mux.HandleFunc("POST /recommendations/{id}/archive", s.requireAuth(s.handleArchive))
	mux.HandleFunc("POST /recommendations/{id}/unarchive", s.requireAuth(s.handleUnarchive))
	mux.HandleFunc("GET /filters", s.requireAuth(s.handleFilterPanel))
	mux.HandleFunc("POST /filters/tags", s.requireAuth(s.handleToggleTag))
	mux.HandleFunc("POST /filters/clear", s.requireAuth(s.handleClearFilters))

	return s.accessLog(s.provide(mux))
}

// Start serves until ctx is cancelled, sweeping idle cache entries in the background.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.Log.Infof("Starting dashboard on http://%s", s.cfg.Bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server: %w", err)
	case <-ctx.Done():
		s.Log.Info("Shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cache.Sweep(); n > 0 {
				s.Log.Debugf("Evicted %d idle recommendation lists", n)
			}
		}
	}
}
