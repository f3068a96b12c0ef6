// Package session owns the client's belief about who is authenticated.
//
// The Store holds the current Session, the Verifier reconciles a stored
// token against the backend, and the Gateway performs login, registration
// and logout. The persisted token (tokenstore) and the in-memory session
// token are kept equal at every settle point.
package session

import (
	"context"
	"sync"
)

// User is the authenticated identity as reported by the server. Role is
// carried verbatim; the client does not validate it against a closed set.
type User struct {
	ID    string
	Role  string
	Email string
	Name  string
}

// Credentials is the input to login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegistrationData is the input to registration. The backend expects the
// French field name "nom".
type RegistrationData struct {
	Name     string `json:"nom" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Session is the client's current authentication state. Loading is true
// exactly while an initial verification or an explicit login/registration
// call is outstanding.
type Session struct {
	Token   string
	User    *User
	Loading bool
}

// Authenticated reports whether a verified or logged-in user is present.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Store is the single source of truth for the session. Every mutation is
// visible to subscribers before the mutating call returns.
type Store struct {
	mu      sync.Mutex
	current Session
	nextID  int
	subs    map[int]func(Session)
}

// NewStore creates a store primed with the persisted token, if any. With
// a token present the session starts in Loading until a verification
// outcome settles it; without one it settles unauthenticated immediately.
func NewStore(persistedToken string) *Store {
	return &Store{
		current: Session{
			Token:   persistedToken,
			Loading: persistedToken != "",
		},
		subs: map[int]func(Session){},
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn, invoking it synchronously with the current
// session at registration time and again after every change. The returned
// function unsubscribes.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	snapshot := s.current
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Replace swaps the session and notifies subscribers before returning.
func (s *Store) Replace(next Session) {
	s.mu.Lock()
	s.current = next
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// applyIfToken mutates the session only if the given token still equals
// the current session token. This is the staleness rule: a verification
// outcome issued for an old token must not overwrite a newer session.
// Reports whether the mutation was applied.
func (s *Store) applyIfToken(token string, mutate func(*Session)) bool {
	s.mu.Lock()
	if s.current.Token != token {
		s.mu.Unlock()
		return false
	}
	mutate(&s.current)
	next := s.current
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return true
}

// snapshotSubs copies the subscriber list so notification happens outside
// the lock; callers must hold s.mu.
func (s *Store) snapshotSubs() []func(Session) {
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Clear drops token and user. Used by logout and by the forced
// invalidation path; safe to call repeatedly.
func (s *Store) Clear() {
	s.Replace(Session{})
}

// Wait blocks until the session has settled (Loading == false) or the
// context is done, and returns the settled session.
func (s *Store) Wait(ctx context.Context) (Session, error) {
	settled := make(chan Session, 1)
	unsubscribe := s.Subscribe(func(sess Session) {
		if !sess.Loading {
			select {
			case settled <- sess:
			default:
			}
		}
	})
	defer unsubscribe()

	select {
	case sess := <-settled:
		return sess, nil
	case <-ctx.Done():
		return s.Current(), ctx.Err()
	}
}
