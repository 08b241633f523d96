package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"sparta-training/models"
)

const sessionCookie = "sparta_session"

// Session is the per-browser state: the OAuth state nonce, the Strava token
// and the athlete it belongs to, and a one-shot flash message.
type Session struct {
	ID         string
	OAuthState string
	Token      *oauth2.Token
	Athlete    *models.Athlete
	Flash      string
}

// LoggedIn reports whether the session holds a Strava login.
func (s Session) LoggedIn() bool {
	return s.Token != nil && s.Token.AccessToken != "" && s.Athlete != nil && s.Athlete.ID != ""
}

// Sessions unused for sessionIdleTimeout are dropped; the store looks for
// them at most once per sessionSweepInterval.
const (
	sessionIdleTimeout   = 12 * time.Hour
	sessionSweepInterval = time.Minute
)

// SessionStore keeps sessions in memory, keyed by a random cookie value.
// Sessions do not survive a restart.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	lastSeen  map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Load returns a copy of the request's session, starting a new one (and
// setting its cookie) when the browser has none.
func (s *SessionStore) Load(w http.ResponseWriter, r *http.Request) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			s.lastSeen[sess.ID] = now
			return *sess
		}
	}
	return s.start(w, r, now)
}

// Start begins a fresh session for the browser, replacing its cookie.
func (s *SessionStore) Start(w http.ResponseWriter, r *http.Request) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start(w, r, s.now())
}

func (s *SessionStore) start(w http.ResponseWriter, r *http.Request, now time.Time) Session {
	sess := &Session{ID: uuid.NewString(), OAuthState: uuid.NewString()}
	s.sessions[sess.ID] = sess
	s.lastSeen[sess.ID] = now
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return *sess
}

// Update applies fn to the stored session with the given ID.
func (s *SessionStore) Update(id string, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		fn(sess)
	}
}

// Delete forgets the session with the given ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.lastSeen, id)
}

func (s *SessionStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sessionSweepInterval {
		return
	}
	s.lastSweep = now
	for id, seen := range s.lastSeen {
		if now.Sub(seen) > sessionIdleTimeout {
			delete(s.sessions, id)
			delete(s.lastSeen, id)
		}
	}
}

type sessionKey struct{}

func withSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) Session {
	sess, _ := ctx.Value(sessionKey{}).(Session)
	return sess
}
