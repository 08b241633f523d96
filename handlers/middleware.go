package handlers

import (
	"net/http"

	"sparta-training/models"
	"sparta-training/paces"
)

// LoadSession attaches the browser's session to the request, renewing an
// expiring Strava token, and resolves the athlete's tempo paces once for the
// rest of the request.
func (d *Deps) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := d.Sessions.Load(w, r)
		if sess.Flash != "" {
			d.Sessions.Update(sess.ID, func(s *Session) { s.Flash = "" })
		}

		if sess.LoggedIn() && d.Strava != nil {
			tok, refreshed, err := d.Strava.Refresh(r.Context(), sess.Token)
			switch {
			case err != nil:
				d.logf("[ERROR] Token refresh for athlete %s failed: %v", sess.Athlete.ID, err)
			case refreshed:
				d.logf("[SYNC] Access token refreshed for athlete %s", sess.Athlete.ID)
				sess.Token = tok
				d.Sessions.Update(sess.ID, func(s *Session) { s.Token = tok })
			}
		}

		var tempoPaces paces.TempoMap
		if sess.LoggedIn() {
			tempoPaces = paces.ResolveTempoPaces(models.AthleteSettings{}, sess.Athlete.ID, d.Settings)
		}

		ctx := paces.NewContext(withSession(r.Context(), sess), tempoPaces)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLogin shows the home page with message to visitors without a login.
func (d *Deps) requireLogin(message string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).LoggedIn() {
			d.renderHome(w, r, message)
			return
		}
		next(w, r)
	}
}

// admin rejects athletes who are not on the admin list.
func (d *Deps) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.isAdmin(sessionFrom(r.Context()).Athlete) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// flash stores a message to show on the next page and redirects there.
func (d *Deps) flash(w http.ResponseWriter, r *http.Request, message, to string) {
	sess := sessionFrom(r.Context())
	d.Sessions.Update(sess.ID, func(s *Session) { s.Flash = message })
	http.Redirect(w, r, to, http.StatusSeeOther)
}
