package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *SessionStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func loadSession(store *SessionStore, cookie *http.Cookie) (Session, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return store.Load(rec, req), rec
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return clock }

	_, rec := loadSession(store, nil)
	active := rec.Result().Cookies()[0]
	for i := 0; i < 500; i++ {
		loadSession(store, nil)
	}
	require.Equal(t, 501, store.size())

	clock = clock.Add(11 * time.Hour)
	again, _ := loadSession(store, active)
	assert.Equal(t, active.Value, again.ID)

	clock = clock.Add(2 * time.Hour)
	loadSession(store, nil)
	assert.Equal(t, 2, store.size())

	kept, _ := loadSession(store, active)
	assert.Equal(t, active.Value, kept.ID)
}

func TestSessionStoreReusesCookie(t *testing.T) {
	store := NewSessionStore()
	first, rec := loadSession(store, nil)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	second, rec := loadSession(store, cookies[0])
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OAuthState, second.OAuthState)
	assert.Empty(t, rec.Result().Cookies())

	store.Delete(first.ID)
	third, _ := loadSession(store, cookies[0])
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, 1, store.size())
}
