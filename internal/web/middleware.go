package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	g "maragu.dev/gomponents"

	"github.com/recdash/recdash/internal/web/views"
	"github.com/recdash/recdash/pkg/filters"
	"github.com/recdash/recdash/pkg/session"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
			"htmx":     isHTMX(r),
		}).Debug("request")
	})
}

// provide attaches the session and filter stores to every request context.
func (s *Server) provide(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.Session != nil {
			ctx = session.NewContext(ctx, s.Session)
		}
		if s.Filters != nil {
			ctx = filters.NewContext(ctx, s.Filters)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth waits out session restoration and sends unauthenticated users to /login?from=...
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			s.Log.Errorf("Route %s served without a session store: %v", r.URL.Path, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		state := sess.State()
		switch {
		case state.IsLoading:
			w.Header().Set("Retry-After", "1")
			s.render(w, http.StatusServiceUnavailable, views.LoadingPage())
		case !state.IsAuthenticated:
			target := "/login?" + url.Values{"from": {requestedPath(r)}}.Encode()
			redirect(w, r, target)
		default:
			next(w, r)
		}
	}
}

// requestedPath is the page the user asked for. For htmx requests that is the page in the
// address bar, not the fragment URL.
func requestedPath(r *http.Request) string {
	if isHTMX(r) {
		if u, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && u.Path != "" {
			return u.RequestURI()
		}
	}
	return r.URL.RequestURI()
}

// safeFrom returns from when it is a same-origin path, and "/" otherwise.
func safeFrom(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return "/"
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "/login" {
		return "/"
	}
	return from
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect replaces the current history entry. htmx requests navigate the whole page.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, nodes ...g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := n.Render(w); err != nil {
			s.Log.Errorf("Rendering response: %v", err)
			return
		}
	}
}
