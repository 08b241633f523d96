package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"sparta-training/strava"
)

// HandleLogin sends the visitor to Strava's consent screen.
func (d *Deps) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	http.Redirect(w, r, d.Strava.AuthCodeURL(sess.OAuthState), http.StatusFound)
}

// HandleCallback completes the OAuth flow: it checks state, exchanges the
// code and records the athlete.
func (d *Deps) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess := sessionFrom(r.Context())

	if denied := q.Get("error"); denied != "" {
		d.flash(w, r, "Authorization denied: "+denied, "/")
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if subtle.ConstantTimeCompare([]byte(sess.OAuthState), []byte(q.Get("state"))) != 1 {
		d.flash(w, r, "State mismatch. Please try again.", "/")
		return
	}

	tok, athlete, err := d.Strava.Exchange(r.Context(), code)
	if errors.Is(err, strava.ErrNotConfigured) {
		d.flash(w, r, "Set STRAVA_CLIENT_SECRET in your environment to exchange the code for tokens.", "/")
		return
	}
	if err != nil {
		d.logf("[ERROR] Strava login failed: %v", err)
		d.flash(w, r, err.Error(), "/")
		return
	}

	d.Sessions.Update(sess.ID, func(s *Session) {
		s.Token = tok
		s.Athlete = &athlete
	})
	d.logf("[SYNC] Athlete %s (%s) logged in", athlete.ID, athlete.FullName())

	if _, err := d.Athletes.Upsert(athlete); err != nil {
		d.logf("[ERROR] Failed to save athlete %s: %v", athlete.ID, err)
		d.flash(w, r, "Unable to save athlete data.", "/")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout ends the browser's session and starts a fresh one to carry
// the confirmation.
func (d *Deps) HandleLogout(w http.ResponseWriter, r *http.Request) {
	d.Sessions.Delete(sessionFrom(r.Context()).ID)
	next := d.Sessions.Start(w, r)
	d.Sessions.Update(next.ID, func(s *Session) { s.Flash = "Logged out of Strava session." })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
