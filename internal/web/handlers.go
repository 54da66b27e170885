package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	g "maragu.dev/gomponents"

	"github.com/recdash/recdash/internal/web/views"
	"github.com/recdash/recdash/pkg/apiclient"
	"github.com/recdash/recdash/pkg/filters"
	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
	"github.com/recdash/recdash/pkg/sanitize"
	"github.com/recdash/recdash/pkg/session"
)

const filtersChangedEvent = "filters-changed"

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) shell(r *http.Request, title string) views.Shell {
	shell := views.Shell{Title: title, Path: r.URL.Path, Dark: s.dark()}
	if st := s.Session.State(); st.User != nil {
		shell.Username = st.User.Username
		shell.Email = st.User.Email
	}
	return shell
}

func (s *Server) dark() bool {
	return s.Theme != nil && s.Theme.IsDark()
}

func (s *Server) handleDashboard(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, views.Page(s.shell(r, title), views.Dashboard(title)))
	}
}

// Login

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if s.Session.IsAuthenticated() {
		http.Redirect(w, r, safeFrom(from), http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, views.LoginPage(views.LoginForm{From: from}, s.dark()))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	form := views.LoginForm{Username: username, From: r.PostForm.Get("from")}

	if username == "" {
		form.UsernameError = "Username is required"
	}
	if password == "" {
		form.PasswordError = "Password is required"
	}
	if form.UsernameError != "" || form.PasswordError != "" {
		s.render(w, http.StatusUnprocessableEntity, views.LoginPage(form, s.dark()))
		return
	}

	resp, err := s.Auth.Login(r.Context(), sanitize.Text(username), password)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			form.UsernameError = "Invalid credentials"
			form.PasswordError = "Invalid credentials"
			s.render(w, http.StatusUnauthorized, views.LoginPage(form, s.dark()))
			return
		}
		s.Log.Warnf("Login failed: %v", err)
		form.Toast = apiclient.Message(err)
		status := http.StatusBadGateway
		if code, ok := apiclient.StatusCode(err); ok && code < 500 {
			status = code
		}
		s.render(w, status, views.LoginPage(form, s.dark()))
		return
	}

	user := session.User{Username: username}
	if resp.User != nil {
		user = session.User{Username: resp.User.Username, Email: resp.User.Email}
	}
	if err := s.Session.Login(r.Context(), resp.Token, user); err != nil {
		s.Log.Errorf("Could not store session: %v", err)
		form.Toast = apiclient.Message(err)
		s.render(w, http.StatusInternalServerError, views.LoginPage(form, s.dark()))
		return
	}
	s.Log.Infof("Signed in as %s", user.Username)
	http.Redirect(w, r, safeFrom(form.From), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Logout(r.Context()); err != nil {
		s.Log.Errorf("Logout: %v", err)
	}
	s.Cache.Clear()
	redirect(w, r, "/login")
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if s.Theme != nil {
		if _, err := s.Theme.Toggle(r.Context()); err != nil {
			s.Log.Errorf("Could not store theme: %v", err)
		}
	}
	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	back := "/"
	if ref := r.Referer(); ref != "" {
		back = safeFrom(refererPath(ref))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Recommendations

// listKey is the cache key of the list a request is about. Tags always come from the filter store.
func listKey(r *http.Request, archived bool, search string) (query.Key, error) {
	flt, err := filters.FromContext(r.Context())
	if err != nil {
		return query.Key{}, err
	}
	return query.NewKey(archived, strings.TrimSpace(search), flt.Tags()), nil
}

func (s *Server) listProps(v query.View) views.ListProps {
	return views.ListProps{View: v, SelectedTags: s.Filters.Tags(), SearchDebounce: s.cfg.SearchDebounce}
}

func (s *Server) handleList(archived bool) http.HandlerFunc {
	title := "Recommendations"
	if archived {
		title = "Archived Recommendations"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := listKey(r, archived, r.URL.Query().Get("search"))
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		v := s.Cache.View(r.Context(), key)
		if v.Err != nil {
			s.Log.Warnf("Loading %s: %v", key, v.Err)
		}
		props := s.listProps(v)
		if isHTMX(r) {
			s.render(w, http.StatusOK, views.ListFragment(props))
			return
		}
		s.render(w, http.StatusOK, views.Page(s.shell(r, title), views.RecommendationsPage(props)))
	}
}

func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := listKey(r, q.Get("archived") == "true", q.Get("search"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	v, err := s.Cache.FetchNextPage(r.Context(), key)
	if err != nil {
		s.Log.Warnf("Loading next page of %s: %v", key, err)
		v.Err = err
	}
	s.render(w, http.StatusOK, views.ListFragment(s.listProps(v)))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := listKey(r, q.Get("archived") == "true", q.Get("search"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	id := r.PathValue("id")
	v, ok := s.Cache.Peek(key)
	if !ok {
		v = s.Cache.View(r.Context(), key)
	}
	for _, rec := range v.Items {
		if rec.RecommendationID == id {
			s.render(w, http.StatusOK, views.Sheet(key, rec))
			return
		}
	}
	s.render(w, http.StatusNotFound, views.NotFound())
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, false)
}

func (s *Server) handleUnarchive(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, true)
}

// mutate archives from the active list, or unarchives from the archived list.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, unarchive bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	key, err := listKey(r, unarchive, r.PostForm.Get("search"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	id := r.PathValue("id")

	run, done := s.Actions.Archive, "Recommendation archived successfully"
	if unarchive {
		run, done = s.Actions.Unarchive, "Recommendation unarchived successfully"
	}
	if err := run(r.Context(), key, id); err != nil {
		s.Log.Warnf("Mutation failed: %v", err)
		w.Header().Set("HX-Reswap", "none")
		s.render(w, http.StatusOK, views.Toast(views.ToastError, apiclient.Message(errors.Unwrap(err))))
		return
	}

	v, _ := s.Cache.Peek(key)
	s.render(w, http.StatusOK,
		views.ListFragment(s.listProps(v)),
		views.Toast(views.ToastSuccess, done),
		views.ClearSheet(),
	)
}

// Filters

func (s *Server) handleFilterPanel(w http.ResponseWriter, r *http.Request) {
	s.renderFilterPanel(w, r, r.URL.Query().Get("q"))
}

func (s *Server) renderFilterPanel(w http.ResponseWriter, r *http.Request, q string, extra ...g.Node) {
	tags, err := s.Cache.AvailableTags(r.Context())
	if err != nil {
		s.Log.Warnf("Loading available tags: %v", err)
	}
	nodes := append([]g.Node{views.FilterPanel(tags, s.Filters.Tags(), q, err)}, extra...)
	s.render(w, http.StatusOK, nodes...)
}

func (s *Server) handleToggleTag(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	flt, err := filters.FromContext(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if tag := strings.TrimSpace(r.PostForm.Get("tag")); tag != "" {
		flt.Toggle(tag)
	}
	s.filtersChanged(w, r, flt)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	flt, err := filters.FromContext(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	flt.Clear()
	s.filtersChanged(w, r, flt)
}

// filtersChanged re-renders the filter controls and tells the list to reload.
func (s *Server) filtersChanged(w http.ResponseWriter, r *http.Request, flt *filters.Store) {
	w.Header().Set("HX-Trigger", filtersChangedEvent)
	tags := flt.Tags()
	s.renderFilterPanel(w, r, "",
		views.FilterButton(len(tags), true),
		views.SelectedTags(tags, true),
	)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func refererPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return "/"
	}
	return u.RequestURI()
}

var _ LoginService = (*recommendations.Service)(nil)
