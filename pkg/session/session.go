// Package session holds the process-wide authentication state and keeps it in
// sync with durable storage and the API client's bearer token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/recdash/recdash/pkg/storage"
)

// TokenSink receives the bearer token to attach to outgoing requests.
type TokenSink interface {
	SetAuthToken(token string)
}

type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// State is a snapshot of the session.
type State struct {
	Token           string
	User            *User
	IsAuthenticated bool
	IsLoading       bool
}

type Store struct {
	kv     storage.KV
	client TokenSink

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New returns a store that reports IsLoading until Restore has run.
func New(kv storage.KV, client TokenSink) *Store {
	return &Store{
		kv:      kv,
		client:  client,
		loading: true,
		subs:    make(map[int]func(State)),
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := State{Token: s.token, IsAuthenticated: s.token != "", IsLoading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Restore reads the persisted token. A stored token authenticates the session
// without asking the server. Loading ends whatever the outcome.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.kv.Get(ctx, storage.KeyAuthToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.finishLoading("", nil)
		return fmt.Errorf("could not read stored token: %w", err)
	}

	var user *User
	if token != "" {
		user = &User{}
		if raw, uerr := s.kv.Get(ctx, storage.KeyAuthUser); uerr == nil {
			if jerr := json.Unmarshal([]byte(raw), user); jerr != nil {
				user = &User{}
			}
		}
	}
	s.finishLoading(token, user)
	return nil
}

func (s *Store) finishLoading(token string, user *User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.loading = false
	st := s.snapshot()
	s.mu.Unlock()

	s.client.SetAuthToken(token)
	s.notify(st)
}

// Login persists token and user, then marks the session authenticated.
func (s *Store) Login(ctx context.Context, token string, user User) error {
	if token == "" {
		return errors.New("empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("could not persist token: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyAuthUser, string(raw)); err != nil {
		return fmt.Errorf("could not persist user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.loading = false
	st := s.snapshot()
	s.mu.Unlock()

	s.client.SetAuthToken(token)
	s.notify(st)
	return nil
}

// Logout clears the in-memory session first and then the persisted keys.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.loading = false
	st := s.snapshot()
	s.mu.Unlock()

	s.client.SetAuthToken("")
	s.notify(st)

	if err := s.kv.Delete(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("could not delete stored token: %w", err)
	}
	if err := s.kv.Delete(ctx, storage.KeyAuthUser); err != nil {
		return fmt.Errorf("could not delete stored user: %w", err)
	}
	return nil
}

// Subscribe calls fn with the new state after every transition.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
