// Package session holds the console's application state: the signed-in
// user, the auth token, the page title and the theme. State changes only
// through typed actions passed to Store.Dispatch.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kodstechnologies/lm-backoffice/internal/db"
)

// ErrUnauthorized is returned when an operation needs a valid session.
var ErrUnauthorized = errors.New("not signed in or session expired")

// Theme is the console colour theme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// State is a read-only snapshot of the application state.
type State struct {
	UserType    string
	Auth        bool
	PhoneNumber string
	PhoneHint   string
	Email       string
	Token       string
	PageTitle   string
	Theme       Theme
}

// Persister stores the session between runs. *db.DB satisfies it.
type Persister interface {
	SaveSession(profile string, s db.SessionRow) error
	LoadSession(profile string) (db.SessionRow, bool, error)
	ClearSession(profile string) error
}

// Store is the single-writer state container.
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	profile   string
	logger    *log.Logger
	subs      map[int]func(State)
	nextSub   int
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPersister persists the session under profile.
func WithPersister(p Persister, profile string) Option {
	return func(s *Store) {
		s.persister = p
		s.profile = profile
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store and restores any persisted session.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		state:  State{Theme: ThemeDark},
		subs:   make(map[int]func(State)),
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.persister != nil {
		row, ok, err := s.persister.LoadSession(s.profile)
		if err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
		if ok {
			s.state = State{
				UserType:    row.UserType,
				Auth:        row.Auth,
				PhoneNumber: row.PhoneNumber,
				PhoneHint:   row.PhoneHint,
				Email:       row.Email,
				Token:       row.Token,
				Theme:       Theme(row.Theme),
			}
			if s.state.Theme == "" {
				s.state.Theme = ThemeDark
			}
		}
	}
	return s, nil
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the auth token, "" when signed out.
func (s *Store) Token() string {
	return s.State().Token
}

// Dispatch applies an action, persists the result and notifies subscribers.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	prev := s.state
	s.state = a.apply(s.state)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	var err error
	if s.persister != nil && persistedChanged(prev, next) {
		err = s.persist(next)
	}
	for _, fn := range subs {
		fn(next)
	}
	return err
}

func (s *Store) persist(st State) error {
	if st.Token == "" && !st.Auth {
		if err := s.persister.ClearSession(s.profile); err != nil {
			s.logger.Warn("failed to clear session", "err", err)
			return err
		}
		return nil
	}
	err := s.persister.SaveSession(s.profile, db.SessionRow{
		Token:       st.Token,
		UserType:    st.UserType,
		Auth:        st.Auth,
		PhoneNumber: st.PhoneNumber,
		PhoneHint:   st.PhoneHint,
		Email:       st.Email,
		Theme:       string(st.Theme),
	})
	if err != nil {
		s.logger.Warn("failed to persist session", "err", err)
	}
	return err
}

func persistedChanged(a, b State) bool {
	a.PageTitle, b.PageTitle = "", ""
	return a != b
}

// Subscribe registers fn to run after every dispatch. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Authenticated reports whether the user is signed in with a token that
// has not expired. The signature is not checked; the backend does that.
func (s *Store) Authenticated() bool {
	st := s.State()
	if !st.Auth || st.Token == "" {
		return false
	}
	exp, ok := TokenExpiry(st.Token)
	if !ok {
		return true
	}
	return s.now().Before(exp)
}

// RequireAuth returns ErrUnauthorized unless Authenticated.
func (s *Store) RequireAuth() error {
	if !s.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. ok is
// false for opaque tokens and tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
